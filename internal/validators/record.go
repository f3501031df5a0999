package validators

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/MKhiriev/go-plan-keeper/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldClientSideID targets the client-generated identifier of a record.
	FieldClientSideID = "client_side_id"

	// FieldOwnerID targets the owner identifier of a record.
	FieldOwnerID = "owner_id"

	// FieldID targets the server-assigned identifier. Required for updates.
	FieldID = "id"

	// FieldName targets the "name" content attribute.
	FieldName = "name"

	// FieldContentSize targets the serialized size of the content.
	FieldContentSize = "content_size"

	// FieldContentDepth targets the nesting depth of the content.
	FieldContentDepth = "content_depth"
)

// Limits bounds the records accepted by [RecordValidator]. A zero limit
// disables the corresponding check.
type Limits struct {
	MaxNameLength   int
	MaxContentBytes int
	MaxContentDepth int
}

// RecordValidator implements [Validator] for models.Record.
type RecordValidator struct {
	limits Limits
}

// NewRecordValidator constructs a [RecordValidator] enforcing limits.
func NewRecordValidator(limits Limits) Validator {
	return &RecordValidator{limits: limits}
}

// Validate accepts models.Record and *models.Record. When no fields are
// given, everything except FieldID is checked.
func (v *RecordValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Record:
		return v.validateRecord(ctx, value, fields...)
	case *models.Record:
		return v.validateRecord(ctx, *value, fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *RecordValidator) validateRecord(_ context.Context, record models.Record, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldOwnerID, FieldClientSideID, FieldName, FieldContentDepth, FieldContentSize}
	}

	for _, f := range fields {
		switch f {
		case FieldOwnerID:
			if record.OwnerID <= 0 {
				return ErrInvalidOwnerID
			}
		case FieldClientSideID:
			if record.ClientSideID == "" {
				return ErrInvalidClientSideID
			}
		case FieldID:
			if record.ID == "" {
				return ErrInvalidRecordID
			}
		case FieldName:
			if v.limits.MaxNameLength > 0 && utf8.RuneCountInString(record.Name()) > v.limits.MaxNameLength {
				return ErrNameTooLong
			}
		case FieldContentDepth:
			if v.limits.MaxContentDepth > 0 && depth(map[string]any(record.Content), v.limits.MaxContentDepth+1) > v.limits.MaxContentDepth {
				return ErrContentTooDeep
			}
		case FieldContentSize:
			if v.limits.MaxContentBytes <= 0 {
				continue
			}
			data, err := json.Marshal(record.Content)
			if err != nil {
				return ErrInvalidContent
			}
			if len(data) > v.limits.MaxContentBytes {
				return ErrContentTooLarge
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// depth returns the nesting depth of value, counting every object or array
// as one level. It stops descending once limit is reached, so a cyclic or
// very deep value costs at most limit levels.
func depth(value any, limit int) int {
	if limit <= 0 {
		return 0
	}

	var children []any
	switch v := value.(type) {
	case map[string]any:
		for _, c := range v {
			children = append(children, c)
		}
	case models.Content:
		for _, c := range v {
			children = append(children, c)
		}
	case []any:
		children = v
	default:
		return 0
	}

	deepest := 0
	for _, c := range children {
		if d := depth(c, limit-1); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
