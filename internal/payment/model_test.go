package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusCanceled.Terminal())

	assert.False(t, StatusRequiresPaymentMethod.Terminal())
	assert.False(t, StatusRequiresConfirmation.Terminal())
	assert.False(t, StatusRequiresAction.Terminal())
	assert.False(t, StatusProcessing.Terminal())
}

func TestStatusValid(t *testing.T) {
	valid := []Status{
		StatusRequiresPaymentMethod,
		StatusRequiresConfirmation,
		StatusRequiresAction,
		StatusProcessing,
		StatusSucceeded,
		StatusCanceled,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, Status("payment_failed").Valid())
	assert.False(t, Status("").Valid())
}

func TestMethodValid(t *testing.T) {
	assert.True(t, MethodPix.Valid())
	assert.True(t, MethodCard.Valid())
	assert.False(t, Method("boleto").Valid())
	assert.False(t, Method("").Valid())
}

func TestPixChargeReady(t *testing.T) {
	assert.True(t, PixCharge{CopyPasteCode: "00020126...6304", QRCodeImage: "https://qr.example/x.svg"}.Ready())
	assert.True(t, PixCharge{CopyPasteCode: "00020126...6304"}.Ready())

	assert.False(t, PixCharge{Pending: true}.Ready())
	assert.False(t, PixCharge{}.Ready())
	assert.False(t, PixCharge{Pending: true, CopyPasteCode: "00020126...6304"}.Ready())
}
