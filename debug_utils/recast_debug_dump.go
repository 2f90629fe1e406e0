package debug_utils

import (
	"errors"
	"io"
	"time"

	"github.com/gorustyt/gonmgen/common/rw"
	"github.com/gorustyt/gonmgen/recast"
)

var errNilInput = errors.New("input is nil")

// DumpPolyMeshToObj writes the polygons of pmesh as fan triangulated faces.
// Vertices are lifted slightly above the floor so they sit over the source
// geometry in a viewer.
func DumpPolyMeshToObj(pmesh *recast.PolyMeshField, out io.Writer) error {
	if pmesh == nil || out == nil {
		return errNilInput
	}
	w := rw.NewLineWriter(out)
	cs := pmesh.CellSize()
	ch := pmesh.CellHeight()
	orig := pmesh.BoundsMin()

	w.Printf("# Recast Navmesh\n")
	w.Printf("o NavMesh\n")
	w.Printf("\n")

	verts := pmesh.Verts()
	for i := 0; i < pmesh.VertCount(); i++ {
		v := verts[i*3:]
		x := orig[0] + float64(v[0])*cs
		y := orig[1] + float64(v[1]+1)*ch + 0.1
		z := orig[2] + float64(v[2])*cs
		w.Printf("v %f %f %f\n", x, y, z)
	}

	w.Printf("\n")

	for i := 0; i < pmesh.PolyCount(); i++ {
		p := pmesh.PolyIndices(i)
		for j := 2; j < len(p); j++ {
			w.Printf("f %d %d %d\n", p[0]+1, p[j-1]+1, p[j]+1)
		}
	}
	return w.Flush()
}

// DumpTriangleMeshToObj writes the detail mesh with per vertex region
// colors (the "v x y z r g b" extension). A vertex takes the color of the
// region of the last triangle that uses it.
func DumpTriangleMeshToObj(mesh *recast.TriangleMesh, out io.Writer) error {
	if mesh == nil || out == nil {
		return errNilInput
	}
	w := rw.NewLineWriter(out)

	colors := make([]Colorb, mesh.VertCount())
	for i := 0; i < mesh.TriangleCount(); i++ {
		c := RegionColor(mesh.TriangleRegion(i))
		for _, vi := range mesh.Indices[i*3 : i*3+3] {
			colors[vi] = c
		}
	}

	w.Printf("# Recast Navmesh\n")
	w.Printf("o NavMesh\n")
	w.Printf("\n")
	for i := 0; i < mesh.VertCount(); i++ {
		v := mesh.Vertices[i*3:]
		r, g, b := colors[i].Float()
		w.Printf("v %f %f %f %f %f %f\n", v[0], v[1], v[2], r, g, b)
	}
	w.Printf("\n")
	for i := 0; i < mesh.TriangleCount(); i++ {
		t := mesh.Indices[i*3:]
		w.Printf("f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return w.Flush()
}

// DumpContourSetToObj writes every simplified contour as a closed polyline
// in its own group, named after its region.
func DumpContourSetToObj(cset *recast.ContourSet, out io.Writer) error {
	if cset == nil || out == nil {
		return errNilInput
	}
	w := rw.NewLineWriter(out)
	cs := cset.CellSize()
	ch := cset.CellHeight()
	orig := cset.BoundsMin()

	w.Printf("# Recast Contours\n")
	base := 1
	for i := 0; i < cset.Size(); i++ {
		c := cset.Get(i)
		if c.VertCount() == 0 {
			continue
		}
		w.Printf("\ng region_%d\n", c.RegionID)
		r, g, b := RegionColor(c.RegionID).Float()
		for j := 0; j < c.VertCount(); j++ {
			v := c.Verts[j*4:]
			w.Printf("v %f %f %f %f %f %f\n",
				orig[0]+float64(v[0])*cs, orig[1]+float64(v[1]+1)*ch, orig[2]+float64(v[2])*cs, r, g, b)
		}
		w.Printf("l")
		for j := 0; j < c.VertCount(); j++ {
			w.Printf(" %d", base+j)
		}
		w.Printf(" %d\n", base)
		base += c.VertCount()
	}
	return w.Flush()
}

// LogBuildTimes reports the stage timings of one generator run.
func LogBuildTimes(log recast.Logger, data *recast.IntermediateData) {
	if log == nil || data == nil {
		return
	}
	total := data.TotalGenTime()
	if total == recast.Undefined {
		log.Warnf("[NavmeshGenerator][buildTimes] generation did not complete")
		return
	}
	pc := 0.0
	if total > 0 {
		pc = 100.0 / float64(total)
	}
	line := func(name string, d time.Duration) {
		log.Infof("[NavmeshGenerator][buildTimes] %s: %.2fms (%.1f%%)", name, d.Seconds()*1000, float64(d)*pc)
	}
	line("Voxelization", data.VoxelizationTime)
	line("Regions", data.RegionGenTime)
	line("Contours", data.ContourGenTime)
	line("Polymesh", data.PolyGenTime)
	line("Detail mesh", data.FinalMeshGenTime)
	log.Infof("[NavmeshGenerator][buildTimes] total: %.2fms", total.Seconds()*1000)
}
