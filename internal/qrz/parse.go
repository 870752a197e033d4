package qrz

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// session errors that mean the key has to be exchanged again, every other
// provider error on a lookup is treated as "not found"
var authErrorMarkers = []string{
	"session timeout",
	"invalid session key",
}

// SessionBlock is the <Session> element every provider response carries.
type SessionBlock struct {
	Key     string `xml:"Key"`
	Count   int    `xml:"Count"`
	SubExp  string `xml:"SubExp"`
	GMTime  string `xml:"GMTime"`
	Message string `xml:"Message"`
	Error   string `xml:"Error"`
}

type response struct {
	XMLName  xml.Name      `xml:"QRZDatabase"`
	Version  string        `xml:"version,attr"`
	Session  *SessionBlock `xml:"Session"`
	Callsign *Callsign     `xml:"Callsign"`
	DXCC     *DXCC         `xml:"DXCC"`
}

func decode(data []byte) (response, error) {
	var res response
	err := xml.Unmarshal(data, &res)
	if err != nil {
		return response{}, transportError("", fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	if res.Session == nil {
		return response{}, transportError("", fmt.Errorf("%w: missing session block", ErrMalformed))
	}
	return res, nil
}

// classify turns the error field of a session block into a typed error,
// the message text is the only discriminant the provider gives.
func classify(block *SessionBlock) error {
	message := strings.TrimSpace(block.Error)
	if message == "" {
		return nil
	}
	lowered := strings.ToLower(message)
	for _, marker := range authErrorMarkers {
		if strings.Contains(lowered, marker) {
			return authError(message)
		}
	}
	return &Error{Kind: KindNotFound, Message: message}
}

// ParseSession parses a response that only needs its session block.
// The block is returned alongside a classified error when it carries one.
func ParseSession(data []byte) (SessionBlock, error) {
	res, err := decode(data)
	if err != nil {
		return SessionBlock{}, err
	}
	return *res.Session, classify(res.Session)
}

// ParseCallsign parses a callsign lookup response.
func ParseCallsign(data []byte) (Callsign, error) {
	res, err := decode(data)
	if err != nil {
		return Callsign{}, err
	}
	err = classify(res.Session)
	if err != nil {
		return Callsign{}, err
	}
	if res.Callsign == nil {
		return Callsign{}, transportError("", fmt.Errorf("%w: no callsign record", ErrUnexpectedResponse))
	}
	return *res.Callsign, nil
}

// ParseDXCC parses a DXCC entity lookup response.
func ParseDXCC(data []byte) (DXCC, error) {
	res, err := decode(data)
	if err != nil {
		return DXCC{}, err
	}
	err = classify(res.Session)
	if err != nil {
		return DXCC{}, err
	}
	if res.DXCC == nil {
		return DXCC{}, transportError("", fmt.Errorf("%w: no dxcc record", ErrUnexpectedResponse))
	}
	return *res.DXCC, nil
}

// ParseBio returns the bio markup verbatim unless the provider answered
// with a session block instead, in which case that block is classified.
func ParseBio(data []byte) (string, error) {
	if !isDatabaseResponse(data) {
		return string(data), nil
	}
	_, err := ParseSession(data)
	if err != nil {
		return "", err
	}
	return "", transportError("", fmt.Errorf("%w: no bio content", ErrUnexpectedResponse))
}

func isDatabaseResponse(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return true
	}
	return bytes.HasPrefix(trimmed, []byte("<QRZDatabase"))
}
