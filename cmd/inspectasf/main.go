package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"acclaim-fk/internal/acclaim"
	"acclaim-fk/internal/kinematics"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: inspectasf <skeleton.asf> [motion.amc [frame]]")
		os.Exit(1)
	}

	sk, warnings, err := acclaim.LoadSkeleton(os.Args[1], 1)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	fmt.Printf("Bones: %d (movable %d)\n", sk.BoneCount(), sk.MovableBoneCount())

	depth := make([]int, sk.BoneCount())
	for _, i := range sk.PreOrder() {
		b := sk.Bone(i)
		if b.HasParent() {
			depth[i] = depth[b.Parent] + 1
		}
		indent := strings.Repeat("  ", depth[i])
		fmt.Printf("%s%s len=%.3f dir=(%.3f, %.3f, %.3f) axis=(%.1f, %.1f, %.1f) dof=%s\n",
			indent, b.Name, b.Length, b.Dir.X, b.Dir.Y, b.Dir.Z, b.Axis.X, b.Axis.Y, b.Axis.Z, b.DOF)
		for k, l := range b.Limits {
			fmt.Printf("%s  limit[%d]: [%.1f, %.1f]\n", indent, k, l[0], l[1])
		}
	}

	if len(os.Args) < 3 {
		return
	}

	m, err := acclaim.LoadMotion(os.Args[2], sk)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	frame := 0
	if len(os.Args) > 3 {
		frame, err = strconv.Atoi(os.Args[3])
		if err != nil || frame < 0 || frame >= m.FrameCount() {
			fmt.Printf("Error: frame must be in [0, %d)\n", m.FrameCount())
			os.Exit(1)
		}
	}

	kinematics.SetBoneTransform(m, frame)
	fmt.Printf("\nFrame %d of %d:\n", frame, m.FrameCount())
	for _, i := range sk.PreOrder() {
		b := sk.Bone(i)
		fmt.Printf("  %-12s start=(%.3f, %.3f, %.3f) end=(%.3f, %.3f, %.3f)\n", b.Name,
			b.StartPosition.X, b.StartPosition.Y, b.StartPosition.Z,
			b.EndPosition.X, b.EndPosition.Y, b.EndPosition.Z)
	}
}
