// Package ace personalizes, renders and delivers templated email messages.
//
// A MessageType names a template set. Personalize binds it to a recipient,
// a language and a context, and a Sender renders the message for the theme
// and language in effect, then hands it to a delivery Channel.
package ace
