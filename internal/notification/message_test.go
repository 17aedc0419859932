package notification

import (
	"net/url"
	"strings"
	"testing"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestOrder(t *testing.T) *order.Order {
	o, err := order.NewOrder("AERO000123", order.Customer{
		Name:  "Maria Silva",
		Phone: "(11) 98765-4321",
	}, order.PaymentPix)
	require.NoError(t, err)

	_, err = o.AddItem("X-Burger", 2, decimal.NewFromFloat(25.00))
	require.NoError(t, err)
	_, err = o.AddItem("Suco de laranja", 1, decimal.NewFromFloat(8.50))
	require.NoError(t, err)

	return o
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"formatted national", "(11) 98765-4321", "5511987654321"},
		{"bare national", "11987654321", "5511987654321"},
		{"already has country code", "5511987654321", "5511987654321"},
		{"with plus and spaces", "+55 11 98765 4321", "5511987654321"},
		{"landline with area code", "1134567890", "1134567890"},
		{"empty", "", ""},
		{"no digits at all", "a combinar", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestBuildMessage_Content(t *testing.T) {
	o := buildTestOrder(t)

	msg := BuildMessage(o, order.StatusReady, "retirar no balcão")

	assert.Contains(t, msg, "AERO000123")
	assert.Contains(t, msg, "2x X-Burger — R$ 50,00")
	assert.Contains(t, msg, "1x Suco de laranja — R$ 8,50")
	assert.Contains(t, msg, "*Total: R$ 58,50*")
	assert.Contains(t, msg, "retirar no balcão")
	assert.Contains(t, msg, "pronto para retirada")
}

func TestBuildMessage_StatusClosingLines(t *testing.T) {
	o := buildTestOrder(t)

	tests := []struct {
		status  order.Status
		snippet string
	}{
		{order.StatusConfirmed, "confirmado"},
		{order.StatusPreparing, "em preparo"},
		{order.StatusReady, "pronto para retirada"},
		{order.StatusDelivered, "Obrigado pela preferência"},
		{order.StatusCancelled, "Entre em contato"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Contains(t, BuildMessage(o, tt.status, ""), tt.snippet)
		})
	}
}

func TestBuildMessage_Deterministic(t *testing.T) {
	o := buildTestOrder(t)

	first := BuildMessage(o, order.StatusConfirmed, "sem cebola")
	second := BuildMessage(o, order.StatusConfirmed, "sem cebola")

	assert.Equal(t, first, second)
}

func TestBuildMessage_NoteOmittedWhenEmpty(t *testing.T) {
	o := buildTestOrder(t)

	msg := BuildMessage(o, order.StatusConfirmed, "")
	assert.NotContains(t, msg, "Obs:")
}

func TestBuildOrderMessage(t *testing.T) {
	o := buildTestOrder(t)
	o.Customer.Address = "Rua das Flores, 100"
	require.NoError(t, o.ApplyDiscount(decimal.NewFromFloat(5.00)))

	msg := BuildOrderMessage(o)

	assert.Contains(t, msg, "Novo pedido")
	assert.Contains(t, msg, "Maria Silva")
	assert.Contains(t, msg, "Rua das Flores, 100")
	assert.Contains(t, msg, "Desconto: -R$ 5,00")
	assert.Contains(t, msg, "*Total: R$ 53,50*")
	assert.Contains(t, msg, "Pagamento: PIX")
}

func TestDeepLink(t *testing.T) {
	link := DeepLink("5511987654321", "Olá! Pedido 🍔\nTotal: R$ 10,00")

	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511987654321?text="), link)
	// spaces must be %20, not '+'
	assert.NotContains(t, link, "+")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	// round-trips through standard percent-decoding, emoji and newlines intact
	assert.Equal(t, "Olá! Pedido 🍔\nTotal: R$ 10,00", parsed.Query().Get("text"))
}
