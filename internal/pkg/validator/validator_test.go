package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct1 struct {
	Field1      string        `json:"field1" validate:"required"`
	Field2      string        `yaml:"field2" validate:"required"`
	Field3      string        `json:"-" validate:"required"`
	Field4      string        `validate:"required"`
	Nested      []testStruct2 `validate:"dive"`
	testStruct2               // anonymous
}

type testStruct2 struct {
	Field4 string `json:"field4" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()
	err := New().Validate(context.Background(), testStruct1{Nested: []testStruct2{{}, {}}})
	expected := `
- "field1" is a required field
- "field2" is a required field
- "Field3" is a required field
- "Field4" is a required field
- "Nested[0].field4" is a required field
- "Nested[1].field4" is a required field
- "field4" is a required field
`
	require.Error(t, err)
	assert.Equal(t, strings.TrimSpace(expected), err.Error())
}

func TestValidateStructWithNamespace(t *testing.T) {
	t.Parallel()
	err := New().ValidateCtx(context.Background(), testStruct1{Nested: []testStruct2{{}, {}}}, "dive", "my.value")
	expected := `
- "my.value.field1" is a required field
- "my.value.field2" is a required field
- "my.value.Field3" is a required field
- "my.value.Field4" is a required field
- "my.value.Nested[0].field4" is a required field
- "my.value.Nested[1].field4" is a required field
- "my.value.field4" is a required field
`
	require.Error(t, err)
	assert.Equal(t, strings.TrimSpace(expected), err.Error())
}

func TestValidateSlice(t *testing.T) {
	t.Parallel()
	err := New().Validate(context.Background(), []testStruct2{{}, {}})
	expected := `
- "[0].field4" is a required field
- "[1].field4" is a required field
`
	require.Error(t, err)
	assert.Equal(t, strings.TrimSpace(expected), err.Error())
}

func TestValidateValue(t *testing.T) {
	t.Parallel()
	err := New().ValidateValue("", "required")
	require.Error(t, err)
	assert.Equal(t, `is a required field`, err.Error())
}

func TestValidateValueAddNamespace(t *testing.T) {
	t.Parallel()
	err := New().ValidateCtx(context.Background(), "", "required", "my.value")
	require.Error(t, err)
	assert.Equal(t, `"my.value" is a required field`, err.Error())
}

func TestValidateErrorMsgFunc(t *testing.T) {
	t.Parallel()
	rule := Rule{
		Tag: "my_rule",
		Func: func(fl validator.FieldLevel) bool {
			return false
		},
		ErrorMsgFunc: func(fe validator.FieldError) string {
			if fe.Value() == "foo" {
				return "error message for foo"
			}
			return "other error message"
		},
	}

	err := New(rule).ValidateCtx(context.Background(), "foo", "my_rule", "my.value")
	require.Error(t, err)
	assert.Equal(t, `"my.value" error message for foo`, err.Error())

	err = New(rule).ValidateCtx(context.Background(), "other", "my_rule", "my.value")
	require.Error(t, err)
	assert.Equal(t, `"my.value" other error message`, err.Error())
}

func TestValidatorRequiredNotEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := New()

	// String
	err := v.ValidateCtx(ctx, `value`, `required_not_empty`, `some_field`)
	require.NoError(t, err)
	err = v.ValidateCtx(ctx, ``, `required_not_empty`, `some_field`)
	require.Error(t, err)
	assert.Equal(t, `"some_field" is a required field`, err.Error())

	// Array
	err = v.ValidateCtx(ctx, []int{1, 2, 3}, `required_not_empty`, `some_field`)
	require.NoError(t, err)
	err = v.ValidateCtx(ctx, []int{}, `required_not_empty`, `some_field`)
	require.Error(t, err)
	assert.Equal(t, `"some_field" is a required field`, err.Error())
}

func TestValidatorSlug(t *testing.T) {
	t.Parallel()
	cases := []struct {
		value string
		valid bool
	}{
		{"porch-light", true},
		{"bedroom2", true},
		{"a", true},
		{"Porch-Light", false},
		{"porch light", false},
		{"-porch", false},
		{"porch-", false},
		{"", false},
	}

	v := New()
	for i, c := range cases {
		err := v.ValidateCtx(context.Background(), c.value, `slug`, `some_field`)
		if c.valid {
			require.NoError(t, err, `case: %d`, i+1)
		} else {
			require.Error(t, err, `case: %d`, i+1)
			assert.Equal(t, `"some_field" can only contain lowercase alphanumeric characters and dash`, err.Error())
		}
	}
}

func TestValidatorHouse(t *testing.T) {
	t.Parallel()
	v := New()
	require.NoError(t, v.ValidateValue(`A`, `x10-house`))
	require.NoError(t, v.ValidateValue(`P`, `x10-house`))

	err := v.ValidateCtx(context.Background(), `Q`, `x10-house`, `house`)
	require.Error(t, err)
	assert.Equal(t, `"house" must be a house code A through P`, err.Error())

	require.Error(t, v.ValidateValue(`a`, `x10-house`))
	require.Error(t, v.ValidateValue(`AB`, `x10-house`))
	require.Error(t, v.ValidateValue(``, `x10-house`))
}

func TestValidatorUnit(t *testing.T) {
	t.Parallel()
	v := New()
	require.NoError(t, v.ValidateValue(1, `x10-unit`))
	require.NoError(t, v.ValidateValue(16, `x10-unit`))

	err := v.ValidateCtx(context.Background(), 17, `x10-unit`, `number`)
	require.Error(t, err)
	assert.Equal(t, `"number" must be a unit number in range 1-16`, err.Error())

	require.Error(t, v.ValidateValue(0, `x10-unit`))
}

func TestValidatorCrontab(t *testing.T) {
	t.Parallel()
	v := New()
	require.NoError(t, v.ValidateValue(`30 18 * * 1-5`, `crontab`))
	require.NoError(t, v.ValidateValue(`@daily`, `crontab`))

	err := v.ValidateCtx(context.Background(), `61 * * * *`, `crontab`, `crontab`)
	require.Error(t, err)
	assert.Equal(t, `"crontab" is not a valid crontab expression`, err.Error())
}

func TestValidatorSolarEvent(t *testing.T) {
	t.Parallel()
	v := New()
	for _, event := range []string{
		"dawn-astronomical", "dusk-astronomical",
		"dawn-nautical", "dusk-nautical",
		"dawn-civil", "dusk-civil",
		"sunrise", "sunset", "solar-noon",
	} {
		require.NoError(t, v.ValidateValue(event, `solar-event`), event)
	}

	err := v.ValidateCtx(context.Background(), `midnight`, `solar-event`, `event`)
	require.Error(t, err)
	assert.Equal(t, `"event" is not a known solar event`, err.Error())
}
