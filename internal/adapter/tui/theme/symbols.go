package theme

import (
	"os"
	"strings"
)

// SymbolSet holds the glyphs used by the console, switchable between Unicode
// and an ASCII fallback.
type SymbolSet struct {
	Success   string
	Error     string
	Warning   string
	Info      string
	ArrowR    string
	Bullet    string
	Ellipsis  string
	Connected string
	Offline   string
}

var unicodeSymbols = SymbolSet{
	Success:   "\u2713", // ✓
	Error:     "\u2717", // ✗
	Warning:   "\u26A0", // ⚠
	Info:      "\u25CF", // ●
	ArrowR:    "\u2192", // →
	Bullet:    "\u2022", // •
	Ellipsis:  "\u2026", // …
	Connected: "\u25C9", // ◉
	Offline:   "\u25CB", // ○
}

var asciiSymbols = SymbolSet{
	Success:   "[OK]",
	Error:     "[ERR]",
	Warning:   "[!]",
	Info:      "[i]",
	ArrowR:    "->",
	Bullet:    "*",
	Ellipsis:  "...",
	Connected: "(*)",
	Offline:   "( )",
}

// DetectUnicodeSupport reports whether the terminal likely renders Unicode.
// RFIDCONSOLE_ASCII_SYMBOLS=1 forces ASCII.
func DetectUnicodeSupport() bool {
	if v := os.Getenv("RFIDCONSOLE_ASCII_SYMBOLS"); v == "1" || strings.EqualFold(v, "true") {
		return false
	}
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		val := strings.ToLower(os.Getenv(key))
		if strings.Contains(val, "utf-8") || strings.Contains(val, "utf8") {
			return true
		}
	}
	return true
}

// InitSymbols sets the package-level Symbol* variables for the terminal.
func InitSymbols() {
	set := unicodeSymbols
	if !DetectUnicodeSupport() {
		set = asciiSymbols
	}

	SymbolSuccess = set.Success
	SymbolError = set.Error
	SymbolWarning = set.Warning
	SymbolInfo = set.Info
	SymbolArrowR = set.ArrowR
	SymbolBullet = set.Bullet
	SymbolEllipsis = set.Ellipsis
	SymbolConnected = set.Connected
	SymbolOffline = set.Offline
}

func init() {
	InitSymbols()
}
