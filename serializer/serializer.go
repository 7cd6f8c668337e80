// Package serializer validates request payloads and builds JSON-shaped
// representations. Validators and computed fields each come in a synchronous
// and an awaitable form, detected independently per validator and per field,
// mirroring the dual-mode dispatch in package rest.
package serializer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"asyncrest/await"
	"asyncrest/rest"
)

// validate is shared across serializers, configured to report errors under
// the json field names, the way gin's binding validator does.
var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validator checks a decoded value. Returning an error rejects the input;
// errors carrying a *rest.APIError keep their field detail, anything else is
// reported under non_field_errors.
type Validator[T any] interface {
	Validate(ctx context.Context, obj T) error
}

// AsyncValidator is the awaitable validator form. When implemented, Load
// awaits ValidateAsync and never calls Validate.
type AsyncValidator[T any] interface {
	Validator[T]
	ValidateAsync(ctx context.Context, obj T) *await.Promise[await.Void]
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc[T any] func(ctx context.Context, obj T) error

func (f ValidatorFunc[T]) Validate(ctx context.Context, obj T) error { return f(ctx, obj) }

// AsyncValidatorFunc adapts a promise-returning function to the
// AsyncValidator interface. Its synchronous form awaits the same promise, so
// both forms validate identically.
type AsyncValidatorFunc[T any] func(ctx context.Context, obj T) *await.Promise[await.Void]

func (f AsyncValidatorFunc[T]) Validate(ctx context.Context, obj T) error {
	_, err := f(ctx, obj).Await(ctx)
	return err
}

func (f AsyncValidatorFunc[T]) ValidateAsync(ctx context.Context, obj T) *await.Promise[await.Void] {
	return f(ctx, obj)
}

// Field computes one representation value from an instance.
type Field[T any] interface {
	Represent(ctx context.Context, obj T) (any, error)
}

// AsyncField is the awaitable field form. When implemented, representation
// awaits RepresentAsync and never calls Represent.
type AsyncField[T any] interface {
	Field[T]
	RepresentAsync(ctx context.Context, obj T) *await.Promise[any]
}

// FieldFunc adapts a function to the Field interface.
type FieldFunc[T any] func(ctx context.Context, obj T) (any, error)

func (f FieldFunc[T]) Represent(ctx context.Context, obj T) (any, error) { return f(ctx, obj) }

// AsyncFieldFunc adapts a promise-returning function to the AsyncField
// interface.
type AsyncFieldFunc[T any] func(ctx context.Context, obj T) *await.Promise[any]

func (f AsyncFieldFunc[T]) Represent(ctx context.Context, obj T) (any, error) {
	return f(ctx, obj).Await(ctx)
}

func (f AsyncFieldFunc[T]) RepresentAsync(ctx context.Context, obj T) *await.Promise[any] {
	return f(ctx, obj)
}

// Serializer decodes, validates, and represents values of one type. The
// base representation is the value's JSON shape; Omit removes keys from it
// and Fields lays computed values over it.
type Serializer[T any] struct {
	Validators []Validator[T]
	Fields     map[string]Field[T]
	Omit       []string
}

// Load decodes raw JSON into T and validates it: struct tags first, then
// registered validators in order, awaiting each one that supplies the
// awaitable form. Failures come back as *rest.APIError with field detail.
func (s *Serializer[T]) Load(ctx context.Context, raw []byte) (T, error) {
	var obj T

	if err := json.Unmarshal(raw, &obj); err != nil {
		return obj, rest.ValidationError(map[string]string{
			"non_field_errors": "request body is not valid JSON",
		})
	}

	if err := validate.StructCtx(ctx, obj); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
			}
			return obj, rest.ValidationError(fields)
		}
		return obj, err
	}

	for _, v := range s.Validators {
		var err error
		if av, ok := v.(AsyncValidator[T]); ok {
			_, err = av.ValidateAsync(ctx, obj).Await(ctx)
		} else {
			err = v.Validate(ctx, obj)
		}
		if err != nil {
			var apiErr *rest.APIError
			if errors.As(err, &apiErr) {
				return obj, err
			}
			return obj, rest.ValidationError(map[string]string{
				"non_field_errors": err.Error(),
			})
		}
	}

	return obj, nil
}

// LoadRequest is Load over a request body.
func (s *Serializer[T]) LoadRequest(c *rest.Context) (T, error) {
	body, err := c.Body()
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Load(c.RequestContext(), body)
}

// Represent builds the representation of obj: its JSON shape, minus omitted
// keys, plus computed fields. Each computed field may be synchronous or
// awaitable, detected per field.
func (s *Serializer[T]) Represent(ctx context.Context, obj T) (map[string]any, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	for _, key := range s.Omit {
		delete(out, key)
	}

	for name, field := range s.Fields {
		var value any
		if af, ok := field.(AsyncField[T]); ok {
			value, err = af.RepresentAsync(ctx, obj).Await(ctx)
		} else {
			value, err = field.Represent(ctx, obj)
		}
		if err != nil {
			return nil, err
		}
		out[name] = value
	}

	return out, nil
}

// RepresentMany represents a slice of instances in order.
func (s *Serializer[T]) RepresentMany(ctx context.Context, objs []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(objs))
	for _, obj := range objs {
		item, err := s.Represent(ctx, obj)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Bind couples the serializer with one instance so its representation can be
// retrieved directly or as an awaitable.
func (s *Serializer[T]) Bind(obj T) *Bound[T] {
	return &Bound[T]{s: s, obj: obj}
}
