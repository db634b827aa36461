package wallet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("matches sentinel by kind", func(t *testing.T) {
		err := E(KindNotEnoughBalance, "send ether", errors.New("have 0.5"))
		assert.ErrorIs(t, err, ErrNotEnoughBalance)
		assert.NotErrorIs(t, err, ErrConversionFailure)
	})

	t.Run("survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", E(KindInvalidAddress, "send ether", nil))
		assert.ErrorIs(t, err, ErrInvalidAddress)
		assert.Equal(t, KindInvalidAddress, KindOf(err))
	})

	t.Run("unwraps cause", func(t *testing.T) {
		cause := errors.New("dial tcp: timeout")
		err := E(KindNetworkFailure, "balance", cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "balance: network_failure: dial tcp: timeout", err.Error())
	})

	t.Run("kind of foreign error", func(t *testing.T) {
		assert.Equal(t, KindUnknown, KindOf(errors.New("x")))
		assert.Equal(t, KindUnknown, KindOf(nil))
	})
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))
	assert.Equal(t, KindNotEnoughBalance.Description(), Describe(ErrNotEnoughBalance))
	assert.Equal(t, "The password is incorrect.", Describe(fmt.Errorf("unlock: %w", ErrDecrypt)))
	assert.Equal(t, KindUnknown.Description(), Describe(errors.New("boom")))
	assert.Equal(t, "kind(200)", Kind(200).String())
}
