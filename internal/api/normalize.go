package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Backend rows are not uniform across versions. The functions below are the
// single place where field-name fallbacks are resolved; each documents its
// chain in order of precedence.

// NormalizeConnector builds a Connector from a raw row.
//
//	ID:         id → connectionId → connectorId
//	Name:       connectionName → displayName → name → ID
//	Type:       type → connectorType → connectionType
//	Status:     status → connectionStatus → "UNKNOWN"
//	LastSyncAt: lastSyncAt → lastSyncedAt
func NormalizeConnector(row map[string]any) Connector {
	id := firstString(row, "id", "connectionId", "connectorId")
	name := firstString(row, "connectionName", "displayName", "name")
	if name == "" {
		name = id
	}
	status := firstString(row, "status", "connectionStatus")
	if status == "" {
		status = "UNKNOWN"
	}
	return Connector{
		ID:         id,
		Name:       name,
		Type:       firstString(row, "type", "connectorType", "connectionType"),
		Status:     status,
		LastSyncAt: firstString(row, "lastSyncAt", "lastSyncedAt"),
	}
}

// NormalizeConnectors applies NormalizeConnector to every row.
func NormalizeConnectors(rows []map[string]any) []Connector {
	out := make([]Connector, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizeConnector(row))
	}
	return out
}

// NormalizeRoleCode maps a role value that may be either a code or a display
// name onto a role code.
//
//	exact code match → case-insensitive display-name match →
//	case-insensitive code match → UPPER_SNAKE of the raw value
func NormalizeRoleCode(raw string, roles []Role) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, r := range roles {
		if r.Code == raw {
			return r.Code
		}
	}
	for _, r := range roles {
		if strings.EqualFold(r.DisplayName, raw) {
			return r.Code
		}
	}
	for _, r := range roles {
		if strings.EqualFold(r.Code, raw) {
			return r.Code
		}
	}
	return upperSnake(raw)
}

// NormalizeTeammate resolves role fields of a teammate row.
//
//	PrimaryRole:    primaryRole → legacy role
//	SecondaryRoles: secondaryRoles → [legacy secondaryRole]
//
// Both role sets are mapped through NormalizeRoleCode, and the legacy fields
// are rewritten from the normalized values so either shape can be sent back.
func NormalizeTeammate(t Teammate, primary, secondary []Role) Teammate {
	if t.PrimaryRole == "" {
		t.PrimaryRole = t.Role
	}
	if len(t.SecondaryRoles) == 0 && t.SecondaryRole != "" {
		t.SecondaryRoles = []string{t.SecondaryRole}
	}

	t.PrimaryRole = NormalizeRoleCode(t.PrimaryRole, primary)
	codes := make([]string, 0, len(t.SecondaryRoles))
	for _, r := range t.SecondaryRoles {
		if code := NormalizeRoleCode(r, secondary); code != "" {
			codes = append(codes, code)
		}
	}
	t.SecondaryRoles = codes

	t.Role = t.PrimaryRole
	t.SecondaryRole = ""
	if len(codes) > 0 {
		t.SecondaryRole = codes[0]
	}
	return t
}

func firstString(row map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case json.Number:
			s = val.String()
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			s = fmt.Sprint(val)
		}
		if s != "" {
			return s
		}
	}
	return ""
}

func upperSnake(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
