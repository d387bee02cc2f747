package validator

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"
	"github.com/robfig/cron/v3"
	"github.com/umisama/go-regexpcache"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// anonymousField marks embedded structs, so they can be removed from the error namespace.
const anonymousField = "__nested__"

type ErrorMsgFunc func(fe validator.FieldError) string

// Rule is a custom validation, Func or FuncCtx must be set.
type Rule struct {
	Tag          string
	Func         validator.Func
	FuncCtx      validator.FuncCtx
	ErrorMsg     string
	ErrorMsgFunc ErrorMsgFunc
}

type Validator interface {
	Validate(ctx context.Context, value any) error
	ValidateValue(value any, tag string) error
	ValidateCtx(ctx context.Context, value any, tag string, namespace string) error
}

type wrapper struct {
	validator  *validator.Validate
	translator ut.Translator
	errorMsgs  map[string]ErrorMsgFunc
}

func New(rules ...Rule) Validator {
	v := &wrapper{validator: validator.New(), errorMsgs: make(map[string]ErrorMsgFunc)}

	// Register default EN translator
	enLocale := en.New()
	translator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		panic(errors.New("en translator was not found"))
	}
	v.translator = translator
	if err := enTranslation.RegisterDefaultTranslations(v.validator, v.translator); err != nil {
		panic(errors.Errorf("translator was not registered: %w", err))
	}

	// Use JSON/YAML field name in error messages
	v.validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if fld.Anonymous {
			return anonymousField
		}
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return fld.Name
			} else if name != "" {
				return name
			}
		}
		return fld.Name
	})

	v.registerRules(defaultRules()...)
	v.registerRules(rules...)
	return v
}

func (v *wrapper) Validate(ctx context.Context, value any) error {
	return v.ValidateCtx(ctx, value, "dive", "")
}

func (v *wrapper) ValidateValue(value any, tag string) error {
	return v.ValidateCtx(context.Background(), value, tag, "")
}

func (v *wrapper) ValidateCtx(ctx context.Context, value any, tag string, namespace string) error {
	if err := v.validator.VarCtx(ctx, value, tag); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.processError(validationErrs, namespace, reflect.ValueOf(value))
		}
		panic(err)
	}
	return nil
}

func (v *wrapper) registerRules(rules ...Rule) {
	for _, rule := range rules {
		var err error
		switch {
		case rule.FuncCtx != nil:
			err = v.validator.RegisterValidationCtx(rule.Tag, rule.FuncCtx)
		case rule.Func != nil:
			err = v.validator.RegisterValidation(rule.Tag, rule.Func)
		default:
			err = errors.Errorf(`please specify Func or FuncCtx for the rule "%s"`, rule.Tag)
		}
		if err != nil {
			panic(err)
		}

		if rule.ErrorMsgFunc != nil {
			v.errorMsgs[rule.Tag] = rule.ErrorMsgFunc
		} else if rule.ErrorMsg != "" {
			msg := rule.ErrorMsg
			v.errorMsgs[rule.Tag] = func(validator.FieldError) string { return msg }
		}
	}
}

func (v *wrapper) processError(err validator.ValidationErrors, namespace string, value reflect.Value) error {
	errs := errors.NewMultiError()
	for _, e := range err {
		// Translate the error, or use a custom message
		errMsg := ""
		if msgFunc, found := v.errorMsgs[e.Tag()]; found {
			errMsg = msgFunc(e)
		} else {
			// Trim the field name from the default translation, it is a part of the path
			errMsg = strings.TrimSpace(strings.TrimPrefix(e.Translate(v.translator), e.Field()))
		}

		path := joinPath(namespace, relativePath(e.Namespace(), value))
		if path == "" {
			errs.Append(errors.New(errMsg))
		} else {
			errs.Append(errors.Errorf(`"%s" %s`, path, errMsg))
		}
	}
	return errs.ErrorOrNil()
}

// relativePath converts the error namespace to a field path, the root struct name is removed.
func relativePath(namespace string, value reflect.Value) string {
	namespace = strings.ReplaceAll(namespace, anonymousField+".", "")
	for value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() == reflect.Struct {
		if parts := strings.SplitN(namespace, ".", 2); len(parts) == 2 {
			return parts[1]
		}
		return ""
	}
	return namespace
}

func joinPath(namespace, path string) string {
	switch {
	case namespace == "":
		return path
	case path == "":
		return namespace
	default:
		return namespace + "." + path
	}
}

// defaultRules are always registered,
// the domain rules are used by the project configuration structs.
func defaultRules() []Rule {
	return []Rule{
		{
			Tag: "required_not_empty",
			Func: func(fl validator.FieldLevel) bool {
				field := fl.Field()
				switch field.Kind() {
				case reflect.Invalid:
					return false
				case reflect.Ptr, reflect.Interface:
					return !field.IsNil()
				case reflect.Slice, reflect.Map, reflect.Array:
					return field.Len() > 0
				default:
					return !field.IsZero()
				}
			},
			ErrorMsg: "is a required field",
		},
		{
			Tag: "alphanumdash",
			Func: func(fl validator.FieldLevel) bool {
				return regexpcache.MustCompile(`^[a-zA-Z0-9\-]+$`).MatchString(fl.Field().String())
			},
			ErrorMsg: "can only contain alphanumeric characters and dash",
		},
		{
			Tag: "slug",
			Func: func(fl validator.FieldLevel) bool {
				return regexpcache.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`).MatchString(fl.Field().String())
			},
			ErrorMsg: "can only contain lowercase alphanumeric characters and dash",
		},
		{
			Tag: "x10-house",
			Func: func(fl validator.FieldLevel) bool {
				s := fl.Field().String()
				return len(s) == 1 && s[0] >= 'A' && s[0] <= 'P'
			},
			ErrorMsg: "must be a house code A through P",
		},
		{
			Tag: "x10-unit",
			Func: func(fl validator.FieldLevel) bool {
				n := fl.Field().Int()
				return n >= 1 && n <= 16
			},
			ErrorMsg: "must be a unit number in range 1-16",
		},
		{
			Tag: "crontab",
			Func: func(fl validator.FieldLevel) bool {
				_, err := cron.ParseStandard(fl.Field().String())
				return err == nil
			},
			ErrorMsg: "is not a valid crontab expression",
		},
		{
			Tag: "solar-event",
			Func: func(fl validator.FieldLevel) bool {
				switch fl.Field().String() {
				case "dawn-astronomical", "dusk-astronomical",
					"dawn-nautical", "dusk-nautical",
					"dawn-civil", "dusk-civil",
					"sunrise", "sunset", "solar-noon":
					return true
				default:
					return false
				}
			},
			ErrorMsg: "is not a known solar event",
		},
	}
}
