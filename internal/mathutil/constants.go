package mathutil

// Preview camera orientations. ASF skeletons are Y-up with the character
// facing +Z; every view keeps +Y pointing up on screen.
var (
	// ViewFront looks down -Z: world X to the right.
	ViewFront = Mat3Identity()

	// ViewSide looks at the character's left flank: Ry(-90°)
	ViewSide = QuatToMat3(QuatY(Deg2Rad(-90)))

	// ViewThreeQuarter is the default snapshot camera: Rx(15°) @ Ry(-35°)
	ViewThreeQuarter = QuatToMat3(QuatMul(QuatX(Deg2Rad(15)), QuatY(Deg2Rad(-35))))
)

// Views maps the names accepted by config and CLI flags to camera matrices.
var Views = map[string]Mat3{
	"front":        ViewFront,
	"side":         ViewSide,
	"threequarter": ViewThreeQuarter,
}
