package schema

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// pseudoSchemaFile - the validated schema is registered as this resource.
const pseudoSchemaFile = "file:///schema.json"

// SchemaError means the JSON schema itself is broken, not the validated document.
type SchemaError struct {
	error
}

func (e *SchemaError) Unwrap() error {
	return e.error
}

// ValidationError is a document error without a field path.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

// FieldValidationError is a document error related to a field path.
type FieldValidationError struct {
	path    string
	message string
}

func (e *FieldValidationError) Path() string {
	return e.path
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf(`"%s": %s`, e.path, e.message)
}

// ValidateContent validates the document against the JSON schema.
// Errors in the document are returned as they are,
// an error in the schema itself is wrapped to the SchemaError type.
func ValidateContent(schema []byte, content *orderedmap.OrderedMap) error {
	err := validateDocument(schema, content)

	validationErrors := &jsonschema.ValidationError{}
	if errors.As(err, &validationErrors) {
		return processErrors(validationErrors.Causes, false)
	} else if err != nil {
		return err
	}
	return nil
}

func validateDocument(schemaStr []byte, document *orderedmap.OrderedMap) error {
	schema, err := compileSchema(schemaStr)
	if err != nil {
		msg := strings.TrimPrefix(err.Error(), "jsonschema: invalid json "+pseudoSchemaFile+": ")
		// nolint: govet
		return &SchemaError{error: errors.Wrap(err, msg)}
	}
	return schema.Validate(document.ToMap())
}

func processErrors(errs []*jsonschema.ValidationError, parentIsSchemaErr bool) error {
	// Sort errors
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].InstanceLocation < errs[j].InstanceLocation
	})

	schemaErrs := errors.NewMultiError()
	docErrs := errors.NewMultiError()
	for _, e := range errs {
		// Schema error does not start with our pseudo schema file.
		isSchemaErr := !strings.HasPrefix(e.AbsoluteKeywordLocation, pseudoSchemaFile)
		path := strings.TrimLeft(e.InstanceLocation, "/")
		path = strings.ReplaceAll(path, "/", ".")
		msg := strings.ReplaceAll(strings.ReplaceAll(e.Message, `'`, `"`), `n"t`, `n't`)

		var formattedErr error
		switch {
		case len(e.Causes) > 0:
			// Process nested errors.
			if err := processErrors(e.Causes, isSchemaErr || parentIsSchemaErr); err != nil {
				if e.Message == "" || e.Message == "doesn't validate with ''" || e.Message == `'' is invalid:` {
					formattedErr = err
				} else {
					formattedErr = errors.PrefixError(err, msg)
				}
			}
		case isSchemaErr:
			formattedErr = errors.Wrapf(e, `"%s" is invalid: %s`, path, e.Message)
		default:
			// Format error
			if path == "" {
				formattedErr = &ValidationError{message: msg}
			} else {
				formattedErr = &FieldValidationError{path: path, message: msg}
			}
		}

		if formattedErr != nil {
			if isSchemaErr {
				schemaErrs.Append(formattedErr)
			} else {
				docErrs.Append(formattedErr)
			}
		}
	}

	// Errors in the schema have priority, they will be written to the user as a warning.
	if schemaErrs.Len() > 0 {
		if parentIsSchemaErr {
			// Only parent schema error is wrapped to the SchemaError type, nested errors are not.
			return schemaErrs
		}
		return &SchemaError{error: schemaErrs}
	}

	return docErrs.ErrorOrNil()
}

func compileSchema(s []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.ExtractAnnotations = true

	// Decode JSON
	m := orderedmap.New()
	if err := json.Decode(s, &m); err != nil {
		return nil, err
	}

	if err := c.AddResource(pseudoSchemaFile, bytes.NewReader(json.MustEncode(m, false))); err != nil {
		return nil, err
	}

	schema, err := c.Compile(pseudoSchemaFile)
	if err != nil {
		return nil, err
	}

	return schema, nil
}
