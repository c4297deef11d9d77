package vrm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

func readMatrix(data []byte) [16]float32 {
	var mat [16]float32
	for i := 0; i < 16; i++ {
		d := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		mat[i] = math.Float32frombits(d)
	}
	return mat
}

// InverseBindMatrices returns the column-major inverse bind matrices of a skin.
func (doc *Document) InverseBindMatrices(skin int) ([][16]float32, error) {
	if skin < 0 || skin >= len(doc.Skins) {
		return nil, errors.Errorf("skin %d not found", skin)
	}
	s := doc.Skins[skin]
	if s.InverseBindMatrices == nil {
		return nil, nil
	}
	accessor := doc.Accessors[*s.InverseBindMatrices]
	if accessor.BufferView == nil {
		// TODO: sparse accessors
		return nil, errors.New("accessor without buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	data := doc.Buffers[bufferView.Buffer].Data
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = 64
	}
	start := bufferView.ByteOffset + accessor.ByteOffset
	mats := make([][16]float32, 0, accessor.Count)
	for i := uint32(0); i < accessor.Count; i++ {
		offset := start + i*stride
		if int(offset+64) > len(data) {
			return mats, errors.Errorf("matrix %d out of buffer", i)
		}
		mats = append(mats, readMatrix(data[offset:offset+64]))
	}
	return mats, nil
}

// FormatMatrices prints one matrix per line, each column of the glTF matrix as a row.
func FormatMatrices(mats [][16]float32) string {
	var sb strings.Builder
	for i, m := range mats {
		fmt.Fprintf(&sb, "#%02d", i)
		for r := 0; r < 4; r++ {
			fmt.Fprintf(&sb, "[%.2f, %.2f, %.2f, %.2f]", m[r*4], m[r*4+1], m[r*4+2], m[r*4+3])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
