package notification

import (
	"fmt"
	"strings"

	"github.com/aerofood/backend/internal/domain/order"
)

// statusClosingLines maps each target status to the closing line of the
// customer message. Kept next to BuildMessage so message content stays
// deterministic and in one place.
var statusClosingLines = map[order.Status]string{
	order.StatusConfirmed: "✅ Seu pedido foi confirmado! Já vamos começar o preparo.",
	order.StatusPreparing: "👨‍🍳 Seu pedido está em preparo.",
	order.StatusReady:     "🛎️ Seu pedido está pronto para retirada!",
	order.StatusDelivered: "📦 Pedido entregue. Obrigado pela preferência! 💙",
	order.StatusCancelled: "❌ Seu pedido foi cancelado. Entre em contato conosco para mais detalhes.",
}

// formatAmount renders a decimal amount the Brazilian way (comma separator)
func formatAmount(s string) string {
	return "R$ " + strings.Replace(s, ".", ",", 1)
}

// writeItemLines appends the itemized list with per-line pricing
func writeItemLines(b *strings.Builder, o *order.Order) {
	for _, item := range o.Items {
		fmt.Fprintf(b, "%dx %s — %s\n", item.Quantity, item.Name, formatAmount(item.LineTotal.StringFixed(2)))
	}
}

// BuildMessage builds the customer-facing status message for an order.
// It is a pure function of (order snapshot, target status, note): identical
// input yields byte-identical output.
func BuildMessage(o *order.Order, target order.Status, note string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🍔 *AeroFood* — Pedido *%s*\n\n", o.OrderNumber)
	writeItemLines(&b, o)
	fmt.Fprintf(&b, "\n*Total: %s*\n", formatAmount(o.FinalAmount.StringFixed(2)))

	if note != "" {
		fmt.Fprintf(&b, "\n📝 Obs: %s\n", note)
	}

	if line, ok := statusClosingLines[target]; ok {
		b.WriteString("\n" + line)
	}

	return b.String()
}

// BuildOrderMessage builds the message the customer hands to the shop at
// submission time: the full order with contact and payment details.
func BuildOrderMessage(o *order.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🍔 *Novo pedido AeroFood* — *%s*\n\n", o.OrderNumber)
	fmt.Fprintf(&b, "👤 %s\n", o.Customer.Name)
	if o.Customer.Address != "" {
		fmt.Fprintf(&b, "📍 %s\n", o.Customer.Address)
	}
	b.WriteString("\n")
	writeItemLines(&b, o)
	if o.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Desconto: -%s\n", formatAmount(o.DiscountAmount.StringFixed(2)))
	}
	fmt.Fprintf(&b, "\n*Total: %s*\n", formatAmount(o.FinalAmount.StringFixed(2)))
	fmt.Fprintf(&b, "💳 Pagamento: %s\n", o.PaymentMethod.Label())

	if o.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Obs: %s\n", o.Notes)
	}

	return b.String()
}
