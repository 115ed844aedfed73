package charset

// transliterations holds ASCII stand-ins for runes that do not decompose
// into a base letter.
var transliterations = map[rune]string{
	'\u00a0': " ",
	'©': "(C)",
	'«': "<<",
	'®': "(R)",
	'·': ".",
	'»': ">>",
	'Æ': "AE",
	'Ð': "D",
	'×': "x",
	'Ø': "O",
	'Þ': "TH",
	'ß': "ss",
	'æ': "ae",
	'ð': "d",
	'ø': "o",
	'þ': "th",
	'Đ': "D",
	'đ': "d",
	'ı': "i",
	'Ł': "L",
	'ł': "l",
	'Œ': "OE",
	'œ': "oe",
	'‐': "-",
	'‑': "-",
	'‒': "-",
	'–': "-",
	'—': "-",
	'‘': "'",
	'’': "'",
	'‚': ",",
	'“': `"`,
	'”': `"`,
	'„': `"`,
	'•': "o",
	'…': "...",
	'‹': "<",
	'›': ">",
	'€': "EUR",
	'™': "(TM)",
}
