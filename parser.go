package esp8266at

import (
	"strconv"
	"strings"
)

const cwlapPrefix = "+CWLAP:("

// parseAccessPoint parses one "+CWLAP:(enc,"ssid",rssi,"mac",ch)" record
// into an AccessPoint. line must already be known to start with cwlapPrefix
// and end with ')' — the caller (GetAccessPoints) rejects lines that don't
// match before calling this.
func parseAccessPoint(line string) (AccessPoint, error) {
	body := strings.TrimPrefix(line, cwlapPrefix)
	body = strings.TrimSuffix(body, ")")

	fields, err := splitRecord(body)
	if err != nil {
		return AccessPoint{}, err
	}
	if len(fields) != 5 {
		return AccessPoint{}, ErrMalformedRecord
	}

	var ap AccessPoint

	if len(fields[0]) != 1 {
		return AccessPoint{}, ErrUnexpectedEncryption
	}
	enc, ok := encryptionCodes[fields[0][0]]
	if !ok {
		return AccessPoint{}, ErrUnexpectedEncryption
	}
	ap.Encryption = enc

	ap.SSID = unquote(fields[1])

	rssi, err := strconv.Atoi(fields[2])
	if err != nil {
		return AccessPoint{}, ErrMalformedRecord
	}
	ap.RSSI = rssi

	ap.MAC = unquote(fields[3])

	channel, err := strconv.Atoi(fields[4])
	if err != nil || channel < 0 {
		return AccessPoint{}, ErrMalformedRecord
	}
	ap.Channel = channel

	return ap, nil
}

// splitRecord splits body on ',' without treating commas inside a quoted
// field as delimiters. The module never escapes '"' inside SSID/MAC fields,
// so a quoted field runs from its opening '"' to the next '"'.
func splitRecord(body string) ([]string, error) {
	var fields []string
	i := 0
	for i < len(body) {
		if body[i] == '"' {
			end := strings.IndexByte(body[i+1:], '"')
			if end < 0 {
				return nil, ErrMalformedRecord
			}
			end += i + 1
			fields = append(fields, body[i:end+1])
			i = end + 1
			if i < len(body) {
				if body[i] != ',' {
					return nil, ErrMalformedRecord
				}
				i++
			}
			continue
		}
		end := strings.IndexByte(body[i:], ',')
		if end < 0 {
			fields = append(fields, body[i:])
			break
		}
		fields = append(fields, body[i:i+end])
		i += end + 1
	}
	return fields, nil
}

// unquote strips a single pair of surrounding '"' if present, otherwise
// returns s verbatim. Used for the quoted SSID and MAC address fields.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
