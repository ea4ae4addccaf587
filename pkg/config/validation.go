package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// settings mirrors the package values that must hold before the server starts.
type settings struct {
	Port                     string        `validate:"required,numeric"`
	DBDriver                 string        `validate:"required,oneof=sqlite3 libsql postgres"`
	DBDSN                    string        `validate:"required"`
	JWTSecret                string        `validate:"required,min=32"`
	SessionTTL               time.Duration `validate:"gt=0"`
	StorageDriver            string        `validate:"required,oneof=s3 minio memory"`
	StorageBucket            string        `validate:"required"`
	StorageCallTimeout       time.Duration `validate:"gt=0"`
	StoragePageSize          int           `validate:"min=1,max=1000"`
	DeleteRevalidationWindow time.Duration `validate:"gte=0"`
	DeleteConcurrency        int           `validate:"min=1,max=64"`
	UploadMaxBytes           int64         `validate:"gt=0"`
	LogLevel                 string        `validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	AlertEmailTo             string        `validate:"omitempty,email"`
}

// Validate checks the loaded configuration. The server and CLI call it once
// at startup and refuse to run on error.
func Validate() error {
	s := settings{
		Port:                     Port,
		DBDriver:                 DBDriver,
		DBDSN:                    DBDSN,
		JWTSecret:                JWTSecret,
		SessionTTL:               SessionTTL,
		StorageDriver:            StorageDriver,
		StorageBucket:            StorageBucket,
		StorageCallTimeout:       StorageCallTimeout,
		StoragePageSize:          StoragePageSize,
		DeleteRevalidationWindow: DeleteRevalidationWindow,
		DeleteConcurrency:        DeleteConcurrency,
		UploadMaxBytes:           UploadMaxBytes,
		LogLevel:                 LogLevel,
		AlertEmailTo:             AlertEmailTo,
	}
	if err := validate.Struct(&s); err != nil {
		return formatValidationError(err)
	}

	if StorageDriver != "memory" && (StorageAccessKey == "" || StorageSecretKey == "") {
		return fmt.Errorf("storage: driver %q requires STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY", StorageDriver)
	}
	if StorageDriver == "minio" && StorageEndpoint == "" {
		return errors.New("storage: driver minio requires STORAGE_ENDPOINT")
	}
	if (AdminEmail == "") != (AdminPassword == "") {
		return errors.New("auth: ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag", e.Field(), e.Tag())
	}
	return err
}
