package uhfmedium

// parseDRBody parses a DR response body using the same grammar as the @DT
// command body (spec §4.6/§6): `HH P PPPPP /R RR` — 2-hex length (payload
// byte count plus protocolSize), 2-hex protocol, the hex-ASCII-encoded
// payload, the literal "/R", then a 2-hex source modem id.
func parseDRBody(body []byte) (protocol byte, payload []byte, source byte, ok bool) {
	if len(body) < 4 {
		return 0, nil, 0, false
	}
	length := int(hexNibbleFromASCII(body[0])<<4 | hexNibbleFromASCII(body[1]))
	if length < protocolSize {
		return 0, nil, 0, false
	}
	protocol = hexNibbleFromASCII(body[2])<<4 | hexNibbleFromASCII(body[3])
	payloadLen := length - protocolSize
	rest := body[4:]
	hexLen := payloadLen * 2
	if len(rest) < hexLen+4 {
		return 0, nil, 0, false
	}
	payload = decodeHexASCII(rest[:hexLen])
	marker := rest[hexLen : hexLen+2]
	if marker[0] != '/' || marker[1] != 'R' {
		return 0, nil, 0, false
	}
	source = hexNibbleFromASCII(rest[hexLen+2])<<4 | hexNibbleFromASCII(rest[hexLen+3])
	return protocol, payload, source, true
}
