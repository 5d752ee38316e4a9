package hashcash

import (
	"crypto/md5"  //nolint:gosec // hashcash v1 permits MD5 stamps
	"crypto/sha1" //nolint:gosec // SHA-1 is the reference hashcash digest
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm is a digest algorithm stamps can be minted and verified with.
type Algorithm struct {
	name string
	size int
	new  func() hash.Hash
}

var (
	MD5    = Algorithm{name: "MD5", size: md5.Size, new: md5.New}
	SHA1   = Algorithm{name: "SHA1", size: sha1.Size, new: sha1.New}
	SHA256 = Algorithm{name: "SHA256", size: sha256.Size, new: sha256.New}
	SHA384 = Algorithm{name: "SHA384", size: sha512.Size384, new: sha512.New384}
	SHA512 = Algorithm{name: "SHA512", size: sha512.Size, new: sha512.New}

	SHA3_256   = Algorithm{name: "SHA3-256", size: 32, new: sha3.New256}
	SHA3_512   = Algorithm{name: "SHA3-512", size: 64, new: sha3.New512}
	BLAKE2b256 = Algorithm{name: "BLAKE2b-256", size: blake2b.Size256, new: unkeyedBlake2b(blake2b.New256)}
	BLAKE2b512 = Algorithm{name: "BLAKE2b-512", size: blake2b.Size, new: unkeyedBlake2b(blake2b.New512)}
	BLAKE3     = Algorithm{name: "BLAKE3", size: 32, new: func() hash.Hash { return blake3.New() }}
)

var algorithms = func() map[string]Algorithm {
	all := []Algorithm{MD5, SHA1, SHA256, SHA384, SHA512, SHA3_256, SHA3_512, BLAKE2b256, BLAKE2b512, BLAKE3}
	byName := make(map[string]Algorithm, len(all))
	for _, a := range all {
		byName[normalizeName(a.name)] = a
	}
	return byName
}()

func unkeyedBlake2b(newHash func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := newHash(nil)
		if err != nil {
			panic("hashcash: unkeyed blake2b: " + err.Error())
		}
		return h
	}
}

// normalizeName folds case and drops '-' and '_', so "sha-1" matches "SHA1".
func normalizeName(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToUpper(name))
}

// AlgorithmByName looks up a supported algorithm.
func AlgorithmByName(name string) (Algorithm, error) {
	a, ok := algorithms[normalizeName(name)]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrAlgorithm, name)
	}
	return a, nil
}

// Algorithms lists every supported algorithm ordered by name.
func Algorithms() []Algorithm {
	list := make([]Algorithm, 0, len(algorithms))
	for _, a := range algorithms {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].name < list[j].name })
	return list
}

func (a Algorithm) Name() string { return a.name }

// Size is the digest length in bytes.
func (a Algorithm) Size() int { return a.size }

// New returns a fresh hasher.
func (a Algorithm) New() hash.Hash { return a.new() }

func (a Algorithm) String() string { return a.name }

// supports checks that a is usable and its digest covers bits.
func (a Algorithm) supports(bits int) error {
	if a.new == nil {
		return fmt.Errorf("%w: zero algorithm", ErrAlgorithm)
	}
	if a.size*8 < bits {
		return fmt.Errorf("%w: %s digest has %d bits, need %d", ErrAlgorithm, a.name, a.size*8, bits)
	}
	return nil
}
