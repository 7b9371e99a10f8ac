package jaho

import (
	"encoding/json"
	"fmt"
	"strings"
)

// injectionScript builds the JavaScript that inserts the header markup at
// the start of the document body and the footer markup at its end. It
// returns "" when there is nothing to inject.
//
// The injection runs over the DevTools protocol, so it works even when
// script execution has been disabled for the page itself.
func injectionScript(headerHTML, footerHTML string) string {
	if headerHTML == "" && footerHTML == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("(() => {")
	if headerHTML != "" {
		fmt.Fprintf(&b, "document.body.insertAdjacentHTML('afterbegin', %s);", jsString(headerHTML))
	}
	if footerHTML != "" {
		fmt.Fprintf(&b, "document.body.insertAdjacentHTML('beforeend', %s);", jsString(footerHTML))
	}
	b.WriteString("})()")
	return b.String()
}

// jsString encodes s as a JavaScript string literal.
func jsString(s string) string {
	// JSON string encoding is valid JavaScript and cannot fail for a string.
	out, _ := json.Marshal(s)
	return string(out)
}
