// Package validation turns raw request bodies into validated restaurant
// fields, or into per-field error messages.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/bistro/internal/domain/model"
	"github.com/okian/bistro/pkg/metrics"
)

// Messages returned to clients.
const (
	MsgRequired  = "This field is required."
	MsgNull      = "This field may not be null."
	MsgNotString = "Not a valid string."
	MsgBlank     = "This field may not be blank."
	MsgPhone     = "Enter a valid phone number."
	MsgInvalid   = "Invalid value."
)

var phonePattern = regexp.MustCompile(`^[0-9+\-() ]+$`)

// schema is the declarative rule set for a restaurant payload.
type schema struct {
	Name    string `json:"name" validate:"required,max=100"`
	Address string `json:"address" validate:"max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=20,phone"`
	Cuisine string `json:"cuisine" validate:"max=50"`
}

type fieldSpec struct {
	key      string // external name
	goName   string // schema struct field
	required bool
}

// Order matters: errors and columns are reported in this order.
var fields = []fieldSpec{
	{key: "name", goName: "Name", required: true},
	{key: "address", goName: "Address"},
	{key: "phone", goName: "Phone"},
	{key: "cuisine", goName: "Cuisine"},
}

// Validator checks restaurant payloads. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the restaurant schema registered.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate parses input and checks it against the schema. In partial mode
// only supplied fields are checked and missing required fields are allowed.
// On failure the returned error is a FieldErrors.
func (v *Validator) Validate(ctx context.Context, input []byte, partial bool) (model.Fields, error) {
	obj, errs := decodeObject(input)
	if errs != nil {
		record(errs)
		return model.Fields{}, errs
	}

	errs = FieldErrors{}
	var s schema
	sv := reflect.ValueOf(&s).Elem()
	supplied := make([]string, 0, len(fields))

	for _, spec := range fields {
		raw, ok := obj[spec.key]
		if !ok {
			if spec.required && !partial {
				errs.Add(spec.key, MsgRequired)
			}
			continue
		}
		str, msg := asString(raw)
		if msg != "" {
			errs.Add(spec.key, msg)
			continue
		}
		sv.FieldByName(spec.goName).SetString(strings.TrimSpace(str))
		supplied = append(supplied, spec.goName)
	}

	if len(supplied) > 0 {
		if err := v.v.StructPartialCtx(ctx, s, supplied...); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return model.Fields{}, fmt.Errorf("validate restaurant: %w", err)
			}
			for _, fe := range verrs {
				errs.Add(fe.Field(), message(fe))
			}
		}
	}

	if len(errs) > 0 {
		record(errs)
		return model.Fields{}, errs
	}

	var out model.Fields
	for _, goName := range supplied {
		val := model.StringPtr(sv.FieldByName(goName).String())
		switch goName {
		case "Name":
			out.Name = val
		case "Address":
			out.Address = val
		case "Phone":
			out.Phone = val
		case "Cuisine":
			out.Cuisine = val
		}
	}
	return out, nil
}

// decodeObject parses input as a JSON object. An empty body is an empty object.
func decodeObject(input []byte) (map[string]any, FieldErrors) {
	input = bytes.TrimSpace(input)
	if len(input) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, nonField(fmt.Sprintf("JSON parse error - %s", err.Error()))
	}
	if dec.More() {
		return nil, nonField("JSON parse error - unexpected data after top-level value")
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, nonField(fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", kindOf(raw)))
	}
	return obj, nil
}

// asString accepts strings and numbers; anything else yields a message.
func asString(v any) (string, string) {
	switch t := v.(type) {
	case nil:
		return "", MsgNull
	case string:
		return t, ""
	case json.Number:
		return t.String(), ""
	default:
		return "", MsgNotString
	}
}

func kindOf(v any) string {
	switch t := v.(type) {
	case nil:
		return "NoneType"
	case []any:
		return "list"
	case string:
		return "str"
	case bool:
		return "bool"
	case json.Number:
		if strings.ContainsAny(t.String(), ".eE") {
			return "float"
		}
		return "int"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgBlank
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "phone":
		return MsgPhone
	default:
		return MsgInvalid
	}
}

func nonField(msg string) FieldErrors {
	errs := FieldErrors{}
	errs.Add(NonFieldErrors, msg)
	return errs
}

func record(errs FieldErrors) {
	for _, f := range errs.Fields() {
		metrics.RecordValidationFailure(f)
	}
}
