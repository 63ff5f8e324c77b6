package slabview

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type AssetId string

func makeAssetId() AssetId { return AssetId(uuid.NewString()) }

// MeshAsset is CPU-side triangle geometry, indexed, normalized to fit a unit
// sphere around the origin so camera framing never depends on the source
// file's units.
type MeshAsset struct {
	Id        AssetId
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// AssetServer hands out meshes by id. Loading is synchronous; the viewer
// loads one model at startup.
type AssetServer struct {
	log    Logger
	meshes map[AssetId]*MeshAsset
}

func NewAssetServer(log Logger) *AssetServer {
	if log == nil {
		log = NewNopLogger()
	}
	return &AssetServer{
		log:    log,
		meshes: map[AssetId]*MeshAsset{},
	}
}

func (s *AssetServer) Mesh(id AssetId) (*MeshAsset, bool) {
	m, ok := s.meshes[id]
	return m, ok
}

func (s *AssetServer) add(m *MeshAsset) AssetId {
	m.Id = makeAssetId()
	s.meshes[m.Id] = m
	return m.Id
}

// LoadGLTF reads the first triangle primitive of the first mesh in a glTF or
// GLB file.
func (s *AssetServer) LoadGLTF(path string) (AssetId, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open gltf %s: %w", path, err)
	}
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return "", fmt.Errorf("gltf %s contains no mesh primitives", path)
	}
	prim := doc.Meshes[0].Primitives[0]

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return "", fmt.Errorf("gltf %s primitive has no positions", path)
	}
	rawPos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return "", fmt.Errorf("read positions: %w", err)
	}

	mesh := &MeshAsset{Name: path}
	mesh.Positions = make([]mgl32.Vec3, len(rawPos))
	for i, p := range rawPos {
		mesh.Positions[i] = mgl32.Vec3{p[0], p[1], p[2]}
	}

	if prim.Indices != nil {
		idx, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return "", fmt.Errorf("read indices: %w", err)
		}
		mesh.Indices = idx
	} else {
		mesh.Indices = make([]uint32, len(mesh.Positions))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}

	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		rawNorm, err := modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return "", fmt.Errorf("read normals: %w", err)
		}
		mesh.Normals = make([]mgl32.Vec3, len(rawNorm))
		for i, n := range rawNorm {
			mesh.Normals[i] = mgl32.Vec3{n[0], n[1], n[2]}
		}
	} else {
		mesh.Normals = computeSmoothNormals(mesh.Positions, mesh.Indices)
	}

	normalizeMesh(mesh)
	s.log.Debugf("loaded %s: %d vertices, %d triangles", path, len(mesh.Positions), len(mesh.Indices)/3)
	return s.add(mesh), nil
}

// NewTorusKnotMesh builds the default demo model so the viewer works without
// any file on disk.
func (s *AssetServer) NewTorusKnotMesh() AssetId {
	const (
		tubularSegs = 128
		radialSegs  = 24
		radius      = 1.0
		tube        = 0.3
		p, q        = 2.0, 3.0
	)

	curve := func(t float64) mgl32.Vec3 {
		cu := math.Cos(q * t)
		return mgl32.Vec3{
			float32((radius + tube*2*cu) * math.Cos(p*t) / 2),
			float32((radius + tube*2*cu) * math.Sin(p*t) / 2),
			float32(tube * 2 * math.Sin(q*t) / 2),
		}
	}

	mesh := &MeshAsset{Name: "torus-knot"}
	for i := 0; i <= tubularSegs; i++ {
		t := float64(i) / tubularSegs * 2 * math.Pi
		center := curve(t)
		next := curve(t + 0.01)

		tangent := next.Sub(center).Normalize()
		n := next.Add(center)
		bitangent := tangent.Cross(n).Normalize()
		normal := bitangent.Cross(tangent)

		for j := 0; j <= radialSegs; j++ {
			v := float64(j) / radialSegs * 2 * math.Pi
			cx, cy := float32(-tube*math.Cos(v)), float32(tube*math.Sin(v))

			dir := normal.Mul(cx).Add(bitangent.Mul(cy)).Normalize()
			mesh.Positions = append(mesh.Positions, center.Add(dir.Mul(tube)))
			mesh.Normals = append(mesh.Normals, dir)
		}
	}
	for i := 0; i < tubularSegs; i++ {
		for j := 0; j < radialSegs; j++ {
			a := uint32(i*(radialSegs+1) + j)
			b := uint32((i+1)*(radialSegs+1) + j)
			mesh.Indices = append(mesh.Indices,
				a, b, a+1,
				b, b+1, a+1,
			)
		}
	}

	normalizeMesh(mesh)
	return s.add(mesh)
}

func computeSmoothNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if l := n.Len(); l > 1e-9 {
			normals[i] = n.Mul(1 / l)
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	return normals
}

// normalizeMesh recenters the mesh on its bounding-box center and scales it
// to fit a unit sphere.
func normalizeMesh(mesh *MeshAsset) {
	if len(mesh.Positions) == 0 {
		return
	}
	min, max := mesh.Positions[0], mesh.Positions[0]
	for _, p := range mesh.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	center := min.Add(max).Mul(0.5)

	var maxR float32
	for i, p := range mesh.Positions {
		mesh.Positions[i] = p.Sub(center)
		if r := mesh.Positions[i].Len(); r > maxR {
			maxR = r
		}
	}
	if maxR > 1e-9 {
		inv := 1 / maxR
		for i, p := range mesh.Positions {
			mesh.Positions[i] = p.Mul(inv)
		}
	}
}

type AssetsModule struct{}

func (m AssetsModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewAssetServer(app.Logger()))
}
