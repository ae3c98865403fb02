package wstk

import "deedles.dev/waysmoke/ui"

// usKeys maps evdev key codes to the characters that they produce on a
// US layout, unshifted and shifted. The compositor's keymap is not
// interpreted.
var usKeys = map[uint32][2]rune{
	2: {'1', '!'}, 3: {'2', '@'}, 4: {'3', '#'}, 5: {'4', '$'}, 6: {'5', '%'},
	7: {'6', '^'}, 8: {'7', '&'}, 9: {'8', '*'}, 10: {'9', '('}, 11: {'0', ')'},
	12: {'-', '_'}, 13: {'=', '+'},

	16: {'q', 'Q'}, 17: {'w', 'W'}, 18: {'e', 'E'}, 19: {'r', 'R'}, 20: {'t', 'T'},
	21: {'y', 'Y'}, 22: {'u', 'U'}, 23: {'i', 'I'}, 24: {'o', 'O'}, 25: {'p', 'P'},
	26: {'[', '{'}, 27: {']', '}'},

	30: {'a', 'A'}, 31: {'s', 'S'}, 32: {'d', 'D'}, 33: {'f', 'F'}, 34: {'g', 'G'},
	35: {'h', 'H'}, 36: {'j', 'J'}, 37: {'k', 'K'}, 38: {'l', 'L'},
	39: {';', ':'}, 40: {'\'', '"'}, 41: {'`', '~'}, 43: {'\\', '|'},

	44: {'z', 'Z'}, 45: {'x', 'X'}, 46: {'c', 'C'}, 47: {'v', 'V'}, 48: {'b', 'B'},
	49: {'n', 'N'}, 50: {'m', 'M'}, 51: {',', '<'}, 52: {'.', '>'}, 53: {'/', '?'},

	57: {' ', ' '},
}

// keyRune returns the character produced by key with the given
// modifiers held. Keys that do not produce text, and chords with
// Control, Alt or Logo, return false.
func keyRune(key uint32, mods ui.Modifiers) (rune, bool) {
	if mods&(ui.ModControl|ui.ModAlt|ui.ModLogo) != 0 {
		return 0, false
	}

	r, ok := usKeys[key]
	if !ok {
		return 0, false
	}

	shift := mods.Has(ui.ModShift)
	if mods.Has(ui.ModCaps) && r[0] >= 'a' && r[0] <= 'z' {
		shift = !shift
	}
	if shift {
		return r[1], true
	}
	return r[0], true
}
