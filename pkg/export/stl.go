package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chazu/carton/pkg/kernel"
)

// stlHeader is the fixed 80-byte binary STL header.
var stlHeader = [80]byte{'c', 'a', 'r', 't', 'o', 'n'}

// WriteSTL writes meshes as one binary STL solid.
func WriteSTL(w io.Writer, meshes []*kernel.Mesh) error {
	var count int
	for _, m := range meshes {
		count += m.TriangleCount()
	}
	if uint64(count) > math.MaxUint32 {
		return fmt.Errorf("stl: %d triangles", count)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(stlHeader[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(count)); err != nil {
		return err
	}

	var rec [50]byte
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			corners, normal := m.Triangle(i)
			put := func(off int, v [3]float32) {
				for j, f := range v {
					binary.LittleEndian.PutUint32(rec[off+4*j:], math.Float32bits(f))
				}
			}
			put(0, normal)
			put(12, corners[0])
			put(24, corners[1])
			put(36, corners[2])
			if _, err := bw.Write(rec[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
