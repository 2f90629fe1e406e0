package recast

import "github.com/gorustyt/gonmgen/common"

// pointSegmentDistanceSq2D returns the squared xz distance from (x, z) to the
// segment (px, pz) (qx, qz).
func pointSegmentDistanceSq2D(x, z, px, pz, qx, qz int) float64 {
	pqx := float64(qx - px)
	pqz := float64(qz - pz)
	dx := float64(x - px)
	dz := float64(z - pz)
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)

	dx = float64(px) + t*pqx - float64(x)
	dz = float64(pz) + t*pqz - float64(z)
	return dx*dx + dz*dz
}

// pointSegmentDistanceSq3D returns the squared distance from p to the
// segment ab.
func pointSegmentDistanceSq3D(p, a, b common.Vec3) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	d := ab.Dot(ab)
	t := ab.Dot(ap)
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)
	diff := a.Add(ab.Mul(t)).Sub(p)
	return diff.Dot(diff)
}

// segmentsIntersect reports whether the xz segments ab and cd properly cross.
func segmentsIntersect(ax, az, bx, bz, cx, cz, dx, dz int) bool {
	return common.IntersectProp([]int{ax, 0, az}, []int{bx, 0, bz}, []int{cx, 0, cz}, []int{dx, 0, dz})
}

// insertVert inserts one 4 component vertex before vertex position pos.
func insertVert(verts []int, pos int, x, y, z, w int) []int {
	verts = append(verts, 0, 0, 0, 0)
	copy(verts[(pos+1)*4:], verts[pos*4:len(verts)-4])
	verts[pos*4+0] = x
	verts[pos*4+1] = y
	verts[pos*4+2] = z
	verts[pos*4+3] = w
	return verts
}

// removeVert removes the 4 component vertex at position pos.
func removeVert(verts []int, pos int) []int {
	copy(verts[pos*4:], verts[(pos+1)*4:])
	return verts[:len(verts)-4]
}
