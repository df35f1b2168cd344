package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/agentstation/birthsync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestUnknownEntryError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.UnknownEntryError{ID: "a1b2c3"}
		assert.Equal(t, "entry with ID a1b2c3 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewUnknownEntryError("deadbeef")
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewUnknownEntryError("x")
		wrapped := fmt.Errorf("mark done: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestCorruptRowError(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		err := pkgerrors.NewCorruptRowError("calendar.csv", 7, "unparsable date")
		assert.Equal(t, "corrupt row 7 in calendar.csv: unparsable date", err.Error())
		assert.True(t, pkgerrors.IsCorruptStore(err))
	})

	t.Run("without path", func(t *testing.T) {
		err := &pkgerrors.CorruptRowError{Line: 3, Reason: "missing title"}
		assert.Equal(t, "corrupt row 3: missing title", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrCorruptStore))
	})
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk full")
	err := pkgerrors.NewPersistenceError("calendar.csv", cause)
	assert.Contains(t, err.Error(), "calendar.csv")
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, pkgerrors.IsPersistence(err))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestDirectoryError(t *testing.T) {
	t.Run("with ref", func(t *testing.T) {
		cause := errors.New("precondition failed")
		err := pkgerrors.NewDirectoryError("update", "people/c123", cause)
		assert.Equal(t, "directory update failed for people/c123: precondition failed", err.Error())
		assert.True(t, pkgerrors.IsDirectory(err))
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("without ref", func(t *testing.T) {
		err := pkgerrors.NewDirectoryError("create", "", errors.New("quota"))
		assert.Equal(t, "directory create failed: quota", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrDirectory))
	})
}

func TestImportError(t *testing.T) {
	cause := errors.New("malformed calendar")
	err := pkgerrors.NewImportError("holidays.ics", cause)
	assert.Contains(t, err.Error(), "holidays.ics")
	assert.True(t, pkgerrors.IsImportDecode(err))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestTransitionError(t *testing.T) {
	err := pkgerrors.NewTransitionError("a1b2c3", "removed", "done")
	assert.Equal(t, "entry a1b2c3 cannot transition from removed to done", err.Error())
	assert.True(t, pkgerrors.IsTerminalState(err))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestWrapIO(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("write", "f", nil))

	cause := errors.New("permission denied")
	err := pkgerrors.WrapIO("write", "calendar.csv", cause)
	assert.Equal(t, "failed to write calendar.csv: permission denied", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWrapParse(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapParse("csv", "f", nil))

	err := pkgerrors.WrapParse("ics", "holidays.ics", errors.New("bad header"))
	assert.Contains(t, err.Error(), "ics file holidays.ics")
}
