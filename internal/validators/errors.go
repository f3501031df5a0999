package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidOwnerID      = errors.New("invalid owner ID")
	ErrInvalidClientSideID = errors.New("invalid client side id")
	ErrInvalidRecordID     = errors.New("invalid record id")
	ErrNameTooLong         = errors.New("record name is too long")
	ErrContentTooLarge     = errors.New("record content is too large")
	ErrContentTooDeep      = errors.New("record content is nested too deep")
	ErrInvalidContent      = errors.New("record content cannot be encoded")
)
