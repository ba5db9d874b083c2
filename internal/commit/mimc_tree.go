// Package commit publishes tamper-evident commitments to board layouts.
//
// Each cell becomes a leaf MiMC(salt, index, bit) of a fixed-size binary
// Merkle tree. The root is announced when a game starts; the salt stays
// private until the layout is revealed, so neither roots nor authentication
// paths leak which cells hold ships.
package commit

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

var (
	ErrMismatch = errors.New("commitment mismatch")
	ErrBadHex   = errors.New("malformed hex value")
)

// feBytes encodes x reduced mod the BN254 scalar field as 32 big-endian bytes.
func feBytes(x *big.Int) []byte {
	b := new(big.Int).Mod(x, fr.Modulus()).Bytes()
	out := make([]byte, fr.Bytes)
	copy(out[fr.Bytes-len(b):], b)
	return out
}

func bytesToFE(b []byte) *big.Int { return new(big.Int).SetBytes(b) }

// HashLeaf hashes one cell.
func HashLeaf(salt *big.Int, index int, bit uint8) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(salt))
	h.Write(feBytes(big.NewInt(int64(index))))
	h.Write(feBytes(new(big.Int).SetUint64(uint64(bit))))
	return bytesToFE(h.Sum(nil))
}

// HashNode merges two children.
func HashNode(left, right *big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(left))
	h.Write(feBytes(right))
	return bytesToFE(h.Sum(nil))
}

// Tree is a fixed-size binary Merkle tree stored level-by-level.
type Tree struct {
	Depth  int          `json:"depth"`
	Levels [][]*big.Int `json:"levels"` // Levels[0]=leaves, Levels[Depth]=root
}

// BuildTree commits to bits, padding the leaf count up to a power of two
// with water cells.
func BuildTree(bits []uint8, salt *big.Int) (*Tree, error) {
	if len(bits) == 0 {
		return nil, errors.New("no cells to commit")
	}
	size := 1
	for size < len(bits) {
		size <<= 1
	}

	leaves := make([]*big.Int, size)
	for i := range leaves {
		var bit uint8
		if i < len(bits) {
			bit = bits[i]
		}
		if bit > 1 {
			return nil, fmt.Errorf("cell %d has non-binary value %d", i, bit)
		}
		leaves[i] = HashLeaf(salt, i, bit)
	}

	levels := [][]*big.Int{leaves}
	for n := size; n > 1; n /= 2 {
		prev := levels[len(levels)-1]
		up := make([]*big.Int, n/2)
		for i := range up {
			up[i] = HashNode(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, up)
	}
	return &Tree{Depth: len(levels) - 1, Levels: levels}, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[len(t.Levels)-1][0]) }

// Path returns sibling hashes + direction bits for index idx.
// dir[i]=0 ⇒ current is left child; dir[i]=1 ⇒ current is right child.
func (t *Tree) Path(idx int) (path []*big.Int, dir []uint8, err error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return nil, nil, errors.New("idx OOB")
	}
	path = make([]*big.Int, 0, t.Depth)
	dir = make([]uint8, 0, t.Depth)
	cur := idx
	for level := 0; level < t.Depth; level++ {
		sib := cur ^ 1
		path = append(path, new(big.Int).Set(t.Levels[level][sib]))
		dir = append(dir, uint8(cur&1))
		cur /= 2
	}
	return path, dir, nil
}

// NewSalt draws a uniformly random field element.
func NewSalt() (*big.Int, error) {
	return rand.Int(rand.Reader, fr.Modulus())
}

// Seal is a published root together with its private salt, both 0x-hex.
type Seal struct {
	Root string
	Salt string
}

// Commit draws a fresh salt and commits to bits.
func Commit(bits []uint8) (Seal, error) {
	salt, err := NewSalt()
	if err != nil {
		return Seal{}, fmt.Errorf("failed to draw salt: %w", err)
	}
	t, err := BuildTree(bits, salt)
	if err != nil {
		return Seal{}, err
	}
	return Seal{Root: toHex(t.Root()), Salt: toHex(salt)}, nil
}

// Verify checks a revealed layout against a published root.
func Verify(bits []uint8, rootHex, saltHex string) error {
	root, err := fromHex(rootHex)
	if err != nil {
		return err
	}
	salt, err := fromHex(saltHex)
	if err != nil {
		return err
	}
	t, err := BuildTree(bits, salt)
	if err != nil {
		return err
	}
	if t.Root().Cmp(root) != 0 {
		return ErrMismatch
	}
	return nil
}

// Receipt proves the value of a single cell against a published root once
// the salt is known.
type Receipt struct {
	Index int      `json:"index"`
	Bit   uint8    `json:"bit"`
	Path  []string `json:"path"`
	Dir   []uint8  `json:"dir"`
}

// Prove builds a receipt for cell idx of a committed layout.
func Prove(bits []uint8, saltHex string, idx int) (Receipt, error) {
	salt, err := fromHex(saltHex)
	if err != nil {
		return Receipt{}, err
	}
	if idx < 0 || idx >= len(bits) {
		return Receipt{}, fmt.Errorf("cell %d outside %d committed cells", idx, len(bits))
	}
	t, err := BuildTree(bits, salt)
	if err != nil {
		return Receipt{}, err
	}
	path, dir, err := t.Path(idx)
	if err != nil {
		return Receipt{}, err
	}
	r := Receipt{Index: idx, Bit: bits[idx], Path: make([]string, len(path)), Dir: dir}
	for i, p := range path {
		r.Path[i] = toHex(p)
	}
	return r, nil
}

// VerifyReceipt walks the receipt's path up to the root.
func VerifyReceipt(r Receipt, rootHex, saltHex string) error {
	root, err := fromHex(rootHex)
	if err != nil {
		return err
	}
	salt, err := fromHex(saltHex)
	if err != nil {
		return err
	}
	if len(r.Path) != len(r.Dir) {
		return fmt.Errorf("%w: path has %d hashes and %d directions", ErrMismatch, len(r.Path), len(r.Dir))
	}
	curr := HashLeaf(salt, r.Index, r.Bit)
	for i, sibHex := range r.Path {
		sib, err := fromHex(sibHex)
		if err != nil {
			return err
		}
		if r.Dir[i] == 1 {
			curr = HashNode(sib, curr)
		} else {
			curr = HashNode(curr, sib)
		}
	}
	if curr.Cmp(root) != 0 {
		return ErrMismatch
	}
	return nil
}

func toHex(x *big.Int) string { return fmt.Sprintf("0x%x", x) }

func fromHex(s string) (*big.Int, error) {
	if len(s) < 3 || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return nil, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	return n, nil
}
