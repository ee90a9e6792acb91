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

var ErrNoBoneData = errors.New("no :bonedata section")

// LoadSkeleton reads an ASF file. Bone lengths are multiplied by scale.
func LoadSkeleton(path string, scale float64) (*Skeleton, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("asf: open %s: %w", path, err)
	}
	defer f.Close()

	sk, warnings, err := ParseASF(f, scale)
	if err != nil {
		return nil, warnings, fmt.Errorf("asf: %s: %w", path, err)
	}
	return sk, warnings, nil
}

// ParseASF builds and prepares a skeleton from Acclaim ASF text. Non-fatal
// oddities (unknown DOF tokens, non-degree angle units) are returned as
// warnings.
func ParseASF(r io.Reader, scale float64) (*Skeleton, []string, error) {
	p := asfParser{sk: NewSkeleton(scale)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, p.warnings, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, p.warnings, err
	}
	if !p.sawBoneData {
		return nil, p.warnings, ErrNoBoneData
	}
	if p.bone != nil {
		return nil, p.warnings, fmt.Errorf("bone %q: missing end", p.bone.Name)
	}
	if err := p.sk.Prepare(); err != nil {
		return nil, p.warnings, err
	}
	return p.sk, p.warnings, nil
}

type asfParser struct {
	sk          *Skeleton
	line        int
	section     string
	sawBoneData bool
	bone        *BoneSpec // open begin/end block
	inLimits    bool
	warnings    []string
}

func (p *asfParser) warn(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf("line %d: ", p.line)+fmt.Sprintf(format, args...))
}

func (p *asfParser) parseLine(raw string) error {
	fields := strings.Fields(raw)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	if strings.HasPrefix(fields[0], ":") {
		p.section = fields[0]
		p.inLimits = false
		if p.section == ":bonedata" {
			p.sawBoneData = true
		}
		return nil
	}

	switch p.section {
	case ":units":
		if fields[0] == "angle" && len(fields) > 1 && fields[1] != "deg" {
			p.warn("angle unit %q treated as degrees", fields[1])
		}
	case ":bonedata":
		return p.parseBoneData(fields)
	case ":hierarchy":
		return p.parseHierarchy(fields)
	}
	return nil
}

func (p *asfParser) parseBoneData(fields []string) error {
	key := fields[0]

	if p.inLimits && strings.HasPrefix(key, "(") {
		return p.appendLimits(fields)
	}
	p.inLimits = false

	switch key {
	case "begin":
		if p.bone != nil {
			return fmt.Errorf("bone %q: begin before end", p.bone.Name)
		}
		p.bone = &BoneSpec{}
		return nil
	case "end":
		if p.bone == nil {
			return errors.New("end without begin")
		}
		if p.bone.Name == "" {
			return errors.New("bone without name")
		}
		if _, err := p.sk.AddBone(*p.bone); err != nil {
			return err
		}
		p.bone = nil
		return nil
	}

	if p.bone == nil {
		return fmt.Errorf("%q outside begin/end", key)
	}

	switch key {
	case "id":
		// Indices are assigned in declaration order; the file id is informational.
		if len(fields) < 2 {
			return errors.New("id: missing value")
		}
		if _, err := strconv.Atoi(fields[1]); err != nil {
			return fmt.Errorf("id: %w", err)
		}
	case "name":
		if len(fields) < 2 {
			return errors.New("name: missing value")
		}
		p.bone.Name = fields[1]
	case "direction":
		v, err := parseVec(fields[1:])
		if err != nil {
			return fmt.Errorf("direction: %w", err)
		}
		p.bone.Dir = v
	case "length":
		if len(fields) < 2 {
			return errors.New("length: missing value")
		}
		l, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("length: %w", err)
		}
		p.bone.Length = l
	case "axis":
		v, err := parseVec(fields[1:])
		if err != nil {
			return fmt.Errorf("axis: %w", err)
		}
		p.bone.Axis = v
		if len(fields) > 4 && !strings.EqualFold(fields[4], "XYZ") {
			p.warn("bone %q: axis order %s treated as XYZ", p.bone.Name, fields[4])
		}
	case "dof":
		for _, tok := range fields[1:] {
			switch strings.ToLower(tok) {
			case "rx":
				p.bone.DOF |= DOFRX
			case "ry":
				p.bone.DOF |= DOFRY
			case "rz":
				p.bone.DOF |= DOFRZ
			case "tx":
				p.bone.DOF |= DOFTX
			case "ty":
				p.bone.DOF |= DOFTY
			case "tz":
				p.bone.DOF |= DOFTZ
			default:
				p.warn("bone %q: unknown dof token %q", p.bone.Name, tok)
			}
		}
	case "limits":
		p.inLimits = true
		return p.appendLimits(fields[1:])
	default:
		p.warn("bone %q: unknown keyword %q", p.bone.Name, key)
	}
	return nil
}

// appendLimits reads "(lo hi)" pairs, possibly several per line.
func (p *asfParser) appendLimits(fields []string) error {
	joined := strings.NewReplacer("(", " ", ")", " ").Replace(strings.Join(fields, " "))
	vals := strings.Fields(joined)
	if len(vals)%2 != 0 {
		return fmt.Errorf("limits: odd number of values in %q", strings.Join(fields, " "))
	}
	for i := 0; i < len(vals); i += 2 {
		lo, err := strconv.ParseFloat(vals[i], 64)
		if err != nil {
			return fmt.Errorf("limits: %w", err)
		}
		hi, err := strconv.ParseFloat(vals[i+1], 64)
		if err != nil {
			return fmt.Errorf("limits: %w", err)
		}
		p.bone.Limits = append(p.bone.Limits, [2]float64{lo, hi})
	}
	return nil
}

func (p *asfParser) parseHierarchy(fields []string) error {
	if fields[0] == "begin" || fields[0] == "end" {
		return nil
	}
	parent, ok := p.sk.BoneByName(fields[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBone, fields[0])
	}
	for _, name := range fields[1:] {
		child, ok := p.sk.BoneByName(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownBone, name)
		}
		if err := p.sk.Link(parent.Index, child.Index); err != nil {
			return err
		}
	}
	return nil
}

func parseVec(fields []string) (r3.Vec, error) {
	if len(fields) < 3 {
		return r3.Vec{}, fmt.Errorf("want 3 values, got %d", len(fields))
	}
	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return r3.Vec{}, err
		}
		xyz[i] = v
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
