package similarity

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	// ArtifactFormat tags every artifact so serving can reject foreign files.
	ArtifactFormat = "movierec.similarity"
	// ArtifactVersion is bumped whenever the on-disk layout changes.
	ArtifactVersion = 1

	maxHeaderBytes = 64 << 20
	// maxArtifactMovies bounds the size a header may claim.
	maxArtifactMovies = 1 << 17
	// readChunkCells is Decode's initial payload allocation. The buffer then
	// doubles as cells arrive, never past what the header claims.
	readChunkCells = 1 << 16
)

var (
	// ErrNoArtifact means no artifact exists at the configured path. Serving
	// treats it as the "no model" state, not as a failure.
	ErrNoArtifact = errors.New("similarity: no artifact")
	// ErrIncompatibleArtifact means the file exists but is not a readable
	// artifact of this version.
	ErrIncompatibleArtifact = errors.New("similarity: incompatible artifact")
)

// artifactHeader is the BSON document at the start of an artifact. It is
// followed by size*size little-endian float64 cells, row-major.
type artifactHeader struct {
	Format   string    `bson:"format"`
	Version  int32     `bson:"version"`
	Size     int32     `bson:"size"`
	MovieIDs []int64   `bson:"movie_ids"`
	BuiltAt  time.Time `bson:"built_at"`
	Ratings  int64     `bson:"ratings"`
	Users    int64     `bson:"users"`
	Checksum uint64    `bson:"checksum"`
}

// Encode writes m in artifact layout.
func Encode(w io.Writer, m *Model) error {
	if m.n > maxArtifactMovies {
		return fmt.Errorf("encode artifact: %d movies exceeds the limit of %d", m.n, maxArtifactMovies)
	}
	ids := make([]int64, m.n)
	for i, id := range m.ids {
		ids[i] = int64(id)
	}

	h := artifactHeader{
		Format:   ArtifactFormat,
		Version:  ArtifactVersion,
		Size:     int32(m.n),
		MovieIDs: ids,
		BuiltAt:  m.info.BuiltAt,
		Ratings:  int64(m.info.Ratings),
		Users:    int64(m.info.Users),
		Checksum: payloadChecksum(m.data),
	}
	hb, err := bson.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode artifact header: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	var cell [8]byte
	for _, v := range m.data {
		binary.LittleEndian.PutUint64(cell[:], math.Float64bits(v))
		if _, err := bw.Write(cell[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode reads an artifact written by Encode.
func Decode(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)

	var lenBuf [4]byte
	if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: read header length: %v", ErrIncompatibleArtifact, err)
	}
	hlen := int(int32(binary.LittleEndian.Uint32(lenBuf[:])))
	if hlen < 5 || hlen > maxHeaderBytes {
		return nil, fmt.Errorf("%w: header length %d", ErrIncompatibleArtifact, hlen)
	}
	raw := make([]byte, hlen)
	copy(raw, lenBuf[:])
	if _, err := io.ReadFull(br, raw[4:]); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrIncompatibleArtifact, err)
	}

	var h artifactHeader
	if err := bson.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("%w: decode header: %v", ErrIncompatibleArtifact, err)
	}
	if h.Format != ArtifactFormat {
		return nil, fmt.Errorf("%w: format %q", ErrIncompatibleArtifact, h.Format)
	}
	if h.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrIncompatibleArtifact, h.Version, ArtifactVersion)
	}
	n := int(h.Size)
	if n < 0 || n > maxArtifactMovies {
		return nil, fmt.Errorf("%w: size %d", ErrIncompatibleArtifact, n)
	}
	if len(h.MovieIDs) != n {
		return nil, fmt.Errorf("%w: size %d with %d movie ids", ErrIncompatibleArtifact, n, len(h.MovieIDs))
	}

	cells := n * n
	data := make([]float64, 0, min(cells, readChunkCells))
	var cell [8]byte
	for i := 0; i < cells; i++ {
		if _, err := io.ReadFull(br, cell[:]); err != nil {
			return nil, fmt.Errorf("%w: truncated matrix at cell %d: %v", ErrIncompatibleArtifact, i, err)
		}
		if len(data) == cap(data) {
			grown := make([]float64, len(data), min(cells, 2*cap(data)))
			copy(grown, data)
			data = grown
		}
		data = append(data, math.Float64frombits(binary.LittleEndian.Uint64(cell[:])))
	}
	if sum := payloadChecksum(data); sum != h.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrIncompatibleArtifact)
	}

	ids := make([]int, n)
	for i, id := range h.MovieIDs {
		ids[i] = int(id)
	}
	m, err := newModel(ids, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleArtifact, err)
	}
	m.info = Info{
		BuiltAt: h.BuiltAt,
		Ratings: int(h.Ratings),
		Users:   int(h.Users),
	}
	return m, nil
}

// Save publishes m at path atomically: the artifact is written to a temp file
// in the same directory, synced, then renamed over path. A process loading
// path concurrently sees either the previous artifact or the new one.
func Save(path string, m *Model) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".similarity-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, m); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}

	if d, derr := os.Open(dir); derr == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Load reads the artifact at path. A missing file yields ErrNoArtifact.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNoArtifact, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

func payloadChecksum(data []float64) uint64 {
	d := xxhash.New()
	var cell [8]byte
	for _, v := range data {
		binary.LittleEndian.PutUint64(cell[:], math.Float64bits(v))
		_, _ = d.Write(cell[:])
	}
	return d.Sum64()
}
