package pagedata

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
)

const (
	// ErrorKey holds the failure text of a wrapped producer.
	ErrorKey = "error"
	// NotFoundKey is read from the not-found probe to decide whether page
	// data should still be loaded for an unmatched route.
	NotFoundKey = "error404"
)

// Data is the value a producer resolves to.
type Data map[string]any

// Producer loads one piece of page data.
type Producer func(ctx context.Context) (Data, error)

func emptyProducer(context.Context) (Data, error) {
	return Data{}, nil
}

// Wrap converts producer failures into data.
//
// A nil producer behaves as one resolving to an empty Data. Returned errors
// and recovered panics become Data{"error": text}; the wrapped producer never
// returns an error itself.
func Wrap(p Producer) Producer {
	return func(ctx context.Context) (Data, error) {
		data, _ := capture(ctx, p)
		return data, nil
	}
}

// capture runs p and reports whether the result came from a returned error
// or a recovered panic.
func capture(ctx context.Context, p Producer) (data Data, failed bool) {
	if p == nil {
		p = emptyProducer
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			data, failed = failure(fmt.Sprint(recovered)), true
		}
	}()
	value, err := p(ctx)
	if err != nil {
		return failure(err.Error()), true
	}
	if value == nil {
		return Data{}, false
	}
	return value, false
}

func failure(text string) Data {
	return Data{ErrorKey: text}
}

// ErrorText reports the captured failure of a wrapped producer.
func ErrorText(d Data) (string, bool) {
	if d == nil {
		return "", false
	}
	value, ok := d[ErrorKey]
	if !ok {
		return "", false
	}
	text, ok := value.(string)
	if !ok {
		return fmt.Sprint(value), true
	}
	return strings.TrimSpace(text), true
}

// Truthy reports whether v counts as set: nil, false, zero numbers, empty
// strings and nil pointers are false; everything else, including empty maps
// and slices, is true.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}
