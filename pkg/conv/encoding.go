// Package conv decodes externally-sourced text (lexicon files, preset
// documents, sound-law sources) to UTF-8 before it reaches any other
// package, so that the rest of the engine never has to reason about
// source encoding.
package conv

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EncodingID is an enum-like type for supported encodings.
type EncodingID int

const (
	UTF8 EncodingID = iota
	UTF16LE
	UTF16BE
	UTF16LEBOM
	UTF16BEBOM

	ISO8859_1
	ISO8859_2
	ISO8859_5
	ISO8859_7
	ISO8859_9
	ISO8859_15

	KOI8R
	KOI8U

	Windows1250
	Windows1251
	Windows1252
	Windows1253
	Windows1254

	MacRoman
	MacCyrillic

	ShiftJIS
	EUCJP

	GBK
	GB18030

	Big5

	EUCKR
)

// EncodingName returns a canonical string name, for diagnostics and for
// round-tripping through ParseEncoding.
func (e EncodingID) EncodingName() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	case UTF16LEBOM:
		return "UTF-16LE-BOM"
	case UTF16BEBOM:
		return "UTF-16BE-BOM"

	case ISO8859_1:
		return "ISO-8859-1"
	case ISO8859_2:
		return "ISO-8859-2"
	case ISO8859_5:
		return "ISO-8859-5"
	case ISO8859_7:
		return "ISO-8859-7"
	case ISO8859_9:
		return "ISO-8859-9"
	case ISO8859_15:
		return "ISO-8859-15"

	case KOI8R:
		return "KOI8-R"
	case KOI8U:
		return "KOI8-U"

	case Windows1250:
		return "Windows-1250"
	case Windows1251:
		return "Windows-1251"
	case Windows1252:
		return "Windows-1252"
	case Windows1253:
		return "Windows-1253"
	case Windows1254:
		return "Windows-1254"

	case MacRoman:
		return "MacRoman"
	case MacCyrillic:
		return "MacCyrillic"

	case ShiftJIS:
		return "ShiftJIS"
	case EUCJP:
		return "EUC-JP"

	case GBK:
		return "GBK"
	case GB18030:
		return "GB18030"

	case Big5:
		return "Big5"

	case EUCKR:
		return "EUC-KR"
	}
	return "Unknown"
}

var nameToEncoding = map[string]EncodingID{
	"utf-8": UTF8, "utf8": UTF8,
	"utf-16le": UTF16LE, "utf-16be": UTF16BE,
	"utf-16le-bom": UTF16LEBOM, "utf-16be-bom": UTF16BEBOM,

	"iso-8859-1": ISO8859_1, "iso-8859-2": ISO8859_2,
	"iso-8859-5": ISO8859_5, "iso-8859-7": ISO8859_7,
	"iso-8859-9": ISO8859_9, "iso-8859-15": ISO8859_15,

	"koi8-r": KOI8R, "koi8-u": KOI8U,

	"windows-1250": Windows1250, "windows-1251": Windows1251,
	"windows-1252": Windows1252, "windows-1253": Windows1253,
	"windows-1254": Windows1254,

	"macroman": MacRoman, "maccyrillic": MacCyrillic,

	"shiftjis": ShiftJIS, "shift-jis": ShiftJIS, "euc-jp": EUCJP,

	"gbk": GBK, "gb18030": GB18030,

	"big5": Big5,

	"euc-kr": EUCKR,
}

// ParseEncoding returns the EncodingID for a given name, case-insensitive.
func ParseEncoding(name string) (EncodingID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if enc, ok := nameToEncoding[key]; ok {
		return enc, nil
	}
	return 0, fmt.Errorf("conv: unknown encoding %q", name)
}

// GetEncoding returns the golang.org/x/text/encoding.Encoding for id.
func GetEncoding(id EncodingID) (encoding.Encoding, error) {
	switch id {
	case UTF8:
		return unicode.UTF8, nil
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case UTF16LEBOM:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), nil
	case UTF16BEBOM:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), nil

	case ISO8859_1:
		return charmap.ISO8859_1, nil
	case ISO8859_2:
		return charmap.ISO8859_2, nil
	case ISO8859_5:
		return charmap.ISO8859_5, nil
	case ISO8859_7:
		return charmap.ISO8859_7, nil
	case ISO8859_9:
		return charmap.ISO8859_9, nil
	case ISO8859_15:
		return charmap.ISO8859_15, nil

	case KOI8R:
		return charmap.KOI8R, nil
	case KOI8U:
		return charmap.KOI8U, nil

	case Windows1250:
		return charmap.Windows1250, nil
	case Windows1251:
		return charmap.Windows1251, nil
	case Windows1252:
		return charmap.Windows1252, nil
	case Windows1253:
		return charmap.Windows1253, nil
	case Windows1254:
		return charmap.Windows1254, nil

	case MacRoman:
		return charmap.Macintosh, nil
	case MacCyrillic:
		return charmap.MacintoshCyrillic, nil

	case ShiftJIS:
		return japanese.ShiftJIS, nil
	case EUCJP:
		return japanese.EUCJP, nil

	case GBK:
		return simplifiedchinese.GBK, nil
	case GB18030:
		return simplifiedchinese.GB18030, nil

	case Big5:
		return traditionalchinese.Big5, nil

	case EUCKR:
		return korean.EUCKR, nil
	}
	return nil, errors.New("conv: unsupported encoding id")
}

// DecodeToUTF8 wraps r in a transform.Reader that decodes id to UTF-8
// as it is read, so a large source need not be buffered whole as
// ToUTF8 does.
func DecodeToUTF8(r io.Reader, id EncodingID) (io.Reader, error) {
	enc, err := GetEncoding(id)
	if err != nil {
		return nil, err
	}
	if id == UTF8 {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// ToUTF8 decodes a full byte slice from src to a UTF-8 string in one
// step, for small documents (preset files, sound-law sources) where a
// streaming Reader would be unnecessary ceremony.
func ToUTF8(input []byte, src EncodingID) (string, error) {
	r, err := DecodeToUTF8(strings.NewReader(string(input)), src)
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
