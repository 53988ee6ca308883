package address

import (
	"fmt"
	"regexp"

	"github.com/go-i2p/go-beam/lib/common/base58"
	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/util"
)

const (
	Scheme         = "beam:"
	Separator      = "/"
	ParamMarker    = "?"
	ParamSeparator = "&"
	Assign         = "="

	// NameKey is the reserved parameter carrying the base58 display name.
	NameKey = "name"

	// KeyLength is the fixed base58 width of a P-384 SubjectPublicKeyInfo.
	KeyLength = 164
)

// keyClass mirrors base58.Alphabet.
const (
	keyClass   = `[1-9A-HJ-NP-Za-km-z]`
	paramKey   = `[A-Za-z0-9]+`
	paramValue = `[A-Za-z0-9_-]+`
)

var (
	keyPattern   = regexp.MustCompile(`^` + paramKey + `$`)
	valuePattern = regexp.MustCompile(`^` + paramValue + `$`)

	// locatorPattern accepts both the server-only and the full form.
	locatorPattern = regexp.MustCompile(fmt.Sprintf(`^%s%s{%d}(?:%s)?$`,
		regexp.QuoteMeta(Scheme), keyClass, KeyLength, clientBlock()))

	// contactPattern requires the client segment.
	contactPattern = regexp.MustCompile(fmt.Sprintf(`^%s%s{%d}%s$`,
		regexp.QuoteMeta(Scheme), keyClass, KeyLength, clientBlock()))
)

func clientBlock() string {
	pair := paramKey + regexp.QuoteMeta(Assign) + paramValue
	return fmt.Sprintf(`%s%s{%d}(?:%s%s(?:%s%s)*)?`,
		regexp.QuoteMeta(Separator), keyClass, KeyLength,
		regexp.QuoteMeta(ParamMarker), pair,
		regexp.QuoteMeta(ParamSeparator), pair)
}

// offsets into a grammar-checked locator
const (
	serverStart = len(Scheme)
	serverEnd   = serverStart + KeyLength
	clientStart = serverEnd + len(Separator)
	clientEnd   = clientStart + KeyLength
)

func init() {
	checkKeyWidth()
}

// checkKeyWidth fails fast if the key encoder and KeyLength ever disagree,
// since every offset above depends on it.
func checkKeyWidth() {
	if n := base58.MaxEncodedLen(identity.PublicKeySize); n != KeyLength {
		util.Panicf("address: %d byte keys encode to %d base58 chars, KeyLength is %d",
			identity.PublicKeySize, n, KeyLength)
	}
}
