package quote

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const placeholder = "—"

// Summary renders the shareable plain-text quote summary,
// with Spanish number formatting
func Summary(q *Quote, title string) string {
	p := message.NewPrinter(language.Spanish)

	lines := make([]string, 0, 4)

	if title = strings.TrimSpace(title); title != "" {
		lines = append(lines, title)
	}

	if q == nil {
		return strings.Join(append(
			lines,
			"Entrega: "+placeholder,
			"Recibe: "+placeholder,
			"Tasa (COP/VES): "+placeholder,
		), "\n")
	}

	lines = append(lines, "Entrega: "+p.Sprintf("COP %.0f", q.InputCOP))

	recibe := placeholder
	if q.DeliveredVES != nil {
		recibe = p.Sprintf("VES %.2f", *q.DeliveredVES)

		if q.Method != "" {
			recibe += " (" + string(q.Method) + ")"
		}
	}

	lines = append(lines, "Recibe: "+recibe)

	tasa := placeholder
	if q.COPPerVES != nil {
		tasa = p.Sprintf("%.6f", *q.COPPerVES)
	}

	lines = append(lines, "Tasa (COP/VES): "+tasa)

	return strings.Join(lines, "\n")
}
