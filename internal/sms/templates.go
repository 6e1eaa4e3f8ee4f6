// Package sms carries the canned contact messages an agent sends during a
// field visit. Templates substitute the customer name and are turned into
// sms: links the client device can open directly.
package sms

import (
	"fmt"
	"net/url"
	"strings"
)

// customerPlaceholder is replaced with the customer name in template bodies.
const customerPlaceholder = "{customer}"

type Template struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Message is a rendered template ready for the client.
type Message struct {
	Name string `json:"name"`
	Body string `json:"body"`
	Link string `json:"link,omitempty"`
}

var templates = []Template{
	{
		Name: "Visit heads-up",
		Body: "Hello, this is the agency for {customer}. We will arrive shortly, please be ready.",
	},
	{
		Name: "Arrival",
		Body: "Hello, we have arrived in front of the property.",
	},
	{
		Name: "Door code request",
		Body: "Hello, we are at the building entrance. Could you send the door code once more?",
	},
	{
		Name: "Wrap-up",
		Body: "That concludes today's visits. Feel free to reach out with any questions after you review.",
	},
}

// Render substitutes customerName into every template and, when contact is
// non-empty, attaches an sms: link addressed to it.
func Render(customerName, contact string) []Message {
	messages := make([]Message, 0, len(templates))
	for _, t := range templates {
		body := strings.ReplaceAll(t.Body, customerPlaceholder, customerName)
		m := Message{Name: t.Name, Body: body}
		if contact != "" {
			m.Link = Link(contact, body)
		}
		messages = append(messages, m)
	}
	return messages
}

// Link builds an sms: URI for the contact number with body prefilled.
func Link(contact, body string) string {
	return fmt.Sprintf("sms:%s?body=%s", contact, url.QueryEscape(body))
}
