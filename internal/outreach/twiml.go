package outreach

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// introTwiML renders the voice instructions for the intro call: a localized
// greeting naming the lead, a beat, and a pointer to the booking link.
func introTwiML(leadName string) string {
	greeting := fmt.Sprintf(
		"Hola %s, te habla Javier Virtual. Confirmamos que recibimos tu solicitud y queremos ayudarte a avanzar.",
		leadName,
	)
	closing := "Si deseas agendar ahora, revisa el enlace que te enviamos por correo o WhatsApp. ¡Gracias!"

	return `<?xml version="1.0" encoding="UTF-8"?><Response>` +
		say(greeting) +
		`<Pause length="1"/>` +
		say(closing) +
		`</Response>`
}

func say(text string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(text))
	return `<Say voice="Polly.Miguel" language="es-MX">` + buf.String() + `</Say>`
}
