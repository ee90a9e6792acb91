package acclaim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrNoFrame = errors.New("bone data before first frame number")

// LoadMotion reads an AMC file recorded against sk.
func LoadMotion(path string, sk *Skeleton) (*Motion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("amc: open %s: %w", path, err)
	}
	defer f.Close()

	postures, err := ParseAMC(f, sk)
	if err != nil {
		return nil, fmt.Errorf("amc: %s: %w", path, err)
	}
	return NewMotion(sk, postures)
}

// ParseAMC reads Acclaim AMC frames. Each bone line carries one value per
// enabled channel in tx ty tz rx ry rz order. The root translation is
// multiplied by the skeleton scale; bones absent from a frame stay zero.
func ParseAMC(r io.Reader, sk *Skeleton) ([]Posture, error) {
	var (
		postures []Posture
		cur      *Posture
		line     int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") || strings.HasPrefix(fields[0], ":") {
			continue
		}

		if len(fields) == 1 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				postures = append(postures, NewPosture(sk.BoneCount()))
				cur = &postures[len(postures)-1]
				continue
			}
		}

		if cur == nil {
			return nil, fmt.Errorf("line %d: %w", line, ErrNoFrame)
		}
		if err := readBoneLine(sk, cur, fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return postures, nil
}

func readBoneLine(sk *Skeleton, p *Posture, fields []string) error {
	bone, ok := sk.BoneByName(fields[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBone, fields[0])
	}
	values := fields[1:]
	if len(values) != bone.DOF.Count() {
		return fmt.Errorf("bone %s: want %d values for [%s], got %d",
			bone.Name, bone.DOF.Count(), bone.DOF, len(values))
	}

	var t, rot r3.Vec
	targets := map[DOF]*float64{
		DOFTX: &t.X, DOFTY: &t.Y, DOFTZ: &t.Z,
		DOFRX: &rot.X, DOFRY: &rot.Y, DOFRZ: &rot.Z,
	}
	next := 0
	for _, ch := range channelOrder {
		if !bone.DOF.Has(ch.flag) {
			continue
		}
		v, err := strconv.ParseFloat(values[next], 64)
		if err != nil {
			return fmt.Errorf("bone %s %s: %w", bone.Name, ch.name, err)
		}
		*targets[ch.flag] = v
		next++
	}

	if bone.Index == RootIndex {
		t = r3.Scale(sk.Scale(), t)
	}
	p.Rotations[bone.Index] = rot
	p.Translations[bone.Index] = t
	return nil
}
