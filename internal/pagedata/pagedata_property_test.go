package pagedata

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

func optionalProducer(present bool, d Data) Producer {
	if !present {
		return nil
	}
	return func(context.Context) (Data, error) { return d, nil }
}

// TestMatchedHandleAlwaysLoads_PropertyBased checks that any handle other
// than the error handle loads both app and page data.
func TestMatchedHandleAlwaysLoads_PropertyBased(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("matched handles define appData and pageData", prop.ForAll(
		func(handle string, withProbe, error404, withApp, withPage bool) bool {
			if handle == "" || handle == DefaultErrorHandle {
				handle = "route-" + handle
			}
			events := Events{
				Handle:        handle,
				OnNotFound:    optionalProducer(withProbe, Data{NotFoundKey: error404}),
				SetupAppData:  optionalProducer(withApp, Data{"a": 1}),
				SetupPageData: optionalProducer(withPage, Data{"p": 1}),
			}
			got, err := Orchestrate(static(events))(context.Background())
			return err == nil && got.AppData != nil && got.PageData != nil && got.Handle == handle
		},
		gen.AlphaString(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestUnmatchedHandleFollowsProbe_PropertyBased checks that unmatched handles
// load data exactly when the probe reports error404.
func TestUnmatchedHandleFollowsProbe_PropertyBased(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("unmatched handles load data only on error404", prop.ForAll(
		func(useErrorHandle, withProbe, error404 bool) bool {
			handle := ""
			if useErrorHandle {
				handle = DefaultErrorHandle
			}
			events := Events{
				Handle:        handle,
				OnNotFound:    optionalProducer(withProbe, Data{NotFoundKey: error404}),
				SetupAppData:  optionalProducer(true, Data{"a": 1}),
				SetupPageData: optionalProducer(true, Data{"p": 1}),
			}
			got, err := Orchestrate(static(events))(context.Background())
			if err != nil {
				return false
			}
			loaded := got.AppData != nil && got.PageData != nil
			skipped := got.AppData == nil && got.PageData == nil
			if withProbe && error404 {
				return loaded
			}
			return skipped
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestFailuresBecomeData_PropertyBased checks that any producer error text is
// returned as {"error": text} instead of failing the load.
func TestFailuresBecomeData_PropertyBased(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("producer errors are captured", prop.ForAll(
		func(message string) bool {
			events := Events{
				Handle:       "home",
				SetupAppData: func(context.Context) (Data, error) { return nil, errors.New(message) },
			}
			got, err := Orchestrate(static(events))(context.Background())
			if err != nil {
				return false
			}
			text, ok := got.AppData[ErrorKey].(string)
			return ok && text == message && len(got.AppData) == 1
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestExtraFieldsPassThrough_PropertyBased checks that unrecognized bundle
// fields reach the flattened result unchanged.
func TestExtraFieldsPassThrough_PropertyBased(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("extra fields survive", prop.ForAll(
		func(key, val string, matched bool) bool {
			key = "x-" + key
			handle := ""
			if matched {
				handle = "page"
			}
			events := Events{Handle: handle, Extra: map[string]any{key: val}}
			got, err := Orchestrate(static(events))(context.Background())
			if err != nil {
				return false
			}
			return got.Map()[key] == val
		},
		gen.AlphaString(),
		gen.AnyString(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
