package docexpr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, "config: read config: boom", ConfigError("read config", cause).Error())
	assert.Equal(t, "empty_update", NewError(ErrEmptyUpdate, "").Error())
	assert.Equal(t, "unresolvable_field (field=x.A): boom", (&Error{Kind: ErrUnresolvableField, Field: "x.A", Cause: cause}).Error())

	var nilErr *Error
	assert.Equal(t, "", nilErr.Error())
}

func TestIsKindThroughWrapping(t *testing.T) {
	cause := errors.New("dial")
	err := fmt.Errorf("remove: %w", ExecutionError("delete", cause))

	assert.True(t, IsKind(err, ErrExecution))
	assert.False(t, IsKind(err, ErrConfig))
	assert.Equal(t, ErrExecution, KindOf(err))
	assert.True(t, errors.Is(err, cause))

	assert.Equal(t, ErrorKind(""), KindOf(cause))
}
