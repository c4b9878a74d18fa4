package propertyserver

import (
	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// ValidateGUID checks that a GUID argument is present.
func ValidateGUID(field, guid string) error {
	if guid == "" {
		return ocferrors.New(ocferrors.ErrorTypeValidation, field+" is required").
			WithDetail("field", field)
	}
	return nil
}

// ValidateCollection checks the owner and kind of a collection request.
func ValidateCollection(ownerGUID string, kind beans.Kind) error {
	if err := ValidateGUID("owner_guid", ownerGUID); err != nil {
		return err
	}
	if !kind.Valid() {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "unknown element kind").
			WithDetail("kind", string(kind))
	}
	return nil
}

// ValidatePage checks the arguments of FetchElements.
func ValidatePage(ownerGUID string, kind beans.Kind, startFrom, pageSize int) error {
	if err := ValidateCollection(ownerGUID, kind); err != nil {
		return err
	}
	if startFrom < 0 {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "startFrom cannot be negative").
			WithDetail("start_from", startFrom)
	}
	if pageSize < 1 {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "pageSize must be positive").
			WithDetail("page_size", pageSize)
	}
	return nil
}

// AssetNotFound is the error returned for unknown assets.
func AssetNotFound(guid string) error {
	return ocferrors.New(ocferrors.ErrorTypeNotFound, "asset not found").
		WithDetail("asset_guid", guid)
}
