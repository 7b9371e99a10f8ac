package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// maxStreamSize caps decompressed stream size (256 MB).
const maxStreamSize = 256 * 1024 * 1024

// decodeStream applies the stream's filter chain to its raw bytes. Browsers
// emit Flate almost exclusively; ASCIIHex and RunLength are kept because
// they are trivial, image codecs pass through untouched.
func decodeStream(d Dict, raw []byte) ([]byte, error) {
	filterVal, ok := d["Filter"]
	if !ok {
		return raw, nil
	}

	var filters []string
	var parms []Dict
	switch filterVal.Kind {
	case KindName:
		filters = []string{filterVal.Name}
		if p, ok := d.Sub("DecodeParms"); ok {
			parms = []Dict{p}
		} else {
			parms = []Dict{nil}
		}
	case KindArray:
		for _, f := range filterVal.Array {
			if f.Kind == KindName {
				filters = append(filters, f.Name)
			}
		}
		if pVal, ok := d["DecodeParms"]; ok && pVal.Kind == KindArray {
			for _, p := range pVal.Array {
				if p != nil && p.Kind == KindDict {
					parms = append(parms, p.Dict)
				} else {
					parms = append(parms, nil)
				}
			}
		}
		for len(parms) < len(filters) {
			parms = append(parms, nil)
		}
	default:
		return raw, nil
	}

	data := raw
	for i, name := range filters {
		var err error
		data, err = applyFilter(name, parms[i], data)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", name, err)
		}
	}
	return data, nil
}

func applyFilter(name string, parms Dict, data []byte) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return flateDecode(parms, data)
	case "ASCIIHexDecode", "AHx":
		return asciiHexDecode(data), nil
	case "RunLengthDecode", "RL":
		return runLengthDecode(data)
	case "DCTDecode", "DCT", "CCITTFaxDecode", "CCF", "JBIG2Decode", "JPXDecode", "Crypt":
		// binary image data / identity crypt: leave as-is
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported filter")
	}
}

// flateDecode inflates zlib data and undoes an optional PNG predictor.
func flateDecode(parms Dict, data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxStreamSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > maxStreamSize {
		return nil, fmt.Errorf("stream exceeds %d bytes", maxStreamSize)
	}

	if parms == nil {
		return out, nil
	}
	pred, _ := parms.Int("Predictor")
	if pred >= 10 && pred <= 15 {
		return undoPNGPredictor(parms, out)
	}
	return out, nil
}

// undoPNGPredictor reverses PNG row filters (predictors 10-15), which xref
// streams commonly use.
func undoPNGPredictor(parms Dict, data []byte) ([]byte, error) {
	colors, _ := parms.Int("Colors")
	if colors == 0 {
		colors = 1
	}
	bpc, _ := parms.Int("BitsPerComponent")
	if bpc == 0 {
		bpc = 8
	}
	columns, _ := parms.Int("Columns")
	if columns == 0 {
		columns = 1
	}
	rowBytes := int((columns*colors*bpc + 7) / 8)
	stride := rowBytes + 1 // leading filter-type byte per row
	if len(data) == 0 || stride <= 1 {
		return data, nil
	}

	rows := len(data) / stride
	out := make([]byte, rows*rowBytes)
	prev := make([]byte, rowBytes)

	for row := 0; row < rows; row++ {
		ft := data[row*stride]
		src := data[row*stride+1 : row*stride+stride]
		dst := out[row*rowBytes : (row+1)*rowBytes]

		switch ft {
		case 0: // None
			copy(dst, src)
		case 1: // Sub
			for i := range dst {
				var left byte
				if i > 0 {
					left = dst[i-1]
				}
				dst[i] = src[i] + left
			}
		case 2: // Up
			for i := range dst {
				dst[i] = src[i] + prev[i]
			}
		case 3: // Average
			for i := range dst {
				var left byte
				if i > 0 {
					left = dst[i-1]
				}
				dst[i] = src[i] + byte((int(left)+int(prev[i]))/2)
			}
		case 4: // Paeth
			for i := range dst {
				var left, upleft byte
				if i > 0 {
					left = dst[i-1]
					upleft = prev[i-1]
				}
				dst[i] = src[i] + paeth(left, prev[i], upleft)
			}
		default:
			copy(dst, src)
		}
		copy(prev, dst)
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// asciiHexDecode decodes pairs of hex digits up to the '>' terminator.
func asciiHexDecode(data []byte) []byte {
	var buf bytes.Buffer
	i := 0
	for i < len(data) {
		for i < len(data) && isSpace(data[i]) {
			i++
		}
		if i >= len(data) || data[i] == '>' {
			break
		}
		hi := hexNibble(data[i])
		i++
		for i < len(data) && isSpace(data[i]) {
			i++
		}
		var lo byte
		if i < len(data) && data[i] != '>' {
			lo = hexNibble(data[i])
			i++
		}
		buf.WriteByte(hi<<4 | lo)
	}
	return buf.Bytes()
}

// runLengthDecode decodes PackBits-style run length encoding: a length byte
// 0-127 copies the next length+1 bytes, 129-255 repeats the next byte
// 257-length times, 128 ends the data.
func runLengthDecode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	i := 0
	for i < len(data) {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return buf.Bytes(), nil
		case n < 128:
			count := n + 1
			if i+count > len(data) {
				count = len(data) - i
			}
			buf.Write(data[i : i+count])
			i += count
		default:
			if i >= len(data) {
				return buf.Bytes(), nil
			}
			buf.Write(bytes.Repeat(data[i:i+1], 257-n))
			i++
		}
		if buf.Len() > maxStreamSize {
			return nil, fmt.Errorf("stream exceeds %d bytes", maxStreamSize)
		}
	}
	return buf.Bytes(), nil
}
