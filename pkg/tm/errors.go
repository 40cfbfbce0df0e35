package tm

import "errors"

var (
	ErrNotFound         = errors.New("tm: translation not found")
	ErrOpen             = errors.New("tm: failed to open translation memory")
	ErrSetDialect       = errors.New("tm migrator: failed to set dialect")
	ErrApplyMigrations  = errors.New("tm migrator: failed to apply migrations")
	ErrQuery            = errors.New("tm: query failed")
	ErrEmptyURL         = errors.New("tm: empty connection URL")
	ErrParseURL         = errors.New("tm: failed to parse connection URL")
	ErrConnectionFailed = errors.New("tm: failed to establish connection")
)
