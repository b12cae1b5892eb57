package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Category
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unbalanced", err: ErrUnbalancedEntry, want: CategoryValidation},
		{name: "duplicate code", err: ErrDuplicateCode, want: CategoryValidation},
		{name: "account not found prefers not found", err: ErrAccountNotFound, want: CategoryNotFound},
		{name: "entry not editable", err: ErrEntryNotEditable, want: CategoryState},
		{name: "period closed", err: ErrPeriodClosed, want: CategoryResource},
		{name: "no period", err: ErrNoPeriodDefined, want: CategoryResource},
		{name: "lock timeout", err: ErrLockTimeout, want: CategoryTransient},
		{name: "wrapped", err: fmt.Errorf("posting e1: %w", ErrAlreadyPosted), want: CategoryState},
		{name: "unknown", err: errors.New("disk on fire"), want: CategoryInternal},
		{name: "app error", err: NewAppError(http.StatusBadRequest, "bad", ErrInvalidAmount), want: CategoryValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CategoryOf(tc.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("lock accounts: %w", ErrLockTimeout)))
	assert.False(t, IsRetryable(ErrPeriodClosed))
	assert.False(t, IsRetryable(nil))
}

func TestLedgerErrorMatchesKinds(t *testing.T) {
	assert.ErrorIs(t, ErrDuplicateCode, ErrDuplicate)
	assert.ErrorIs(t, ErrDuplicateCode, ErrValidation)
	assert.NotErrorIs(t, ErrDuplicateCode, ErrNotFound)
	assert.Equal(t, "account code already exists", ErrDuplicateCode.Error())
}

func TestAppError(t *testing.T) {
	err := NewAppError(http.StatusConflict, "cannot post", ErrAlreadyPosted)

	assert.Equal(t, "cannot post: journal entry already posted", err.Error())
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "plain", NewAppError(http.StatusTeapot, "plain", nil).Error())
}
