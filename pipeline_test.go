package objmesh

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/flywave/go3d/vec3"
	"github.com/stretchr/testify/assert"
)

const cubeObj = `mtllib cube.mtl
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
usemtl red
f 1 4 3 2
f 5 6 7 8
usemtl green
f 1 2 6 5
f 2 3 7 6
usemtl blue
f 3 4 8 7
f 4 1 5 8
`

const cubeMtl = `newmtl red
Kd 1 0 0
newmtl green
Kd 0 1 0
`

const blueMtl = `newmtl blue
Kd 0 0 1
`

func TestProcessCube(t *testing.T) {
	res, err := Process(Asset{Geometry: cubeObj, Materials: []string{cubeMtl, blueMtl}, DisplaySize: 4})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "", res.Failed)
	assert.Equal(t, 12, res.Buffers.TriangleCount)
	assert.Equal(t, 36, res.Buffers.VertexCount)
	assert.Equal(t, 2.0, res.Transform.Scale)
	assert.Equal(t, vec3.T{1, 0, 0}, res.Buffers.Color(0))
	assert.Equal(t, vec3.T{0, 1, 0}, res.Buffers.Color(12))
	assert.Equal(t, vec3.T{0, 0, 1}, res.Buffers.Color(35))

	bx := res.Buffers.Bounds()
	assert.Equal(t, vec3.T{-2, -2, -2}, bx.Min)
	assert.Equal(t, vec3.T{2, 2, 2}, bx.Max)
}

func TestProcessStopsAtFailingStep(t *testing.T) {
	res, err := Process(Asset{Geometry: cubeObj + "f 1 2 99\n", Materials: []string{cubeMtl}, DisplaySize: 1})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange), "got %v", err)
	assert.Equal(t, StepGeometry, res.Failed)
	assert.Nil(t, res.Buffers)
	// the materials parsed before the failure are kept
	assert.Equal(t, 2, res.Library.Len())

	res, err = Process(Asset{Geometry: cubeObj, Materials: []string{cubeMtl, "Kd 1 1 1\n"}, DisplaySize: 1})
	assert.True(t, errors.Is(err, ErrColorWithoutMaterial))
	assert.Equal(t, StepMaterials, res.Failed)
	assert.Nil(t, res.Document)

	res, err = Process(Asset{Geometry: "v 1 1 1\nf 1 1 1\n", DisplaySize: 1})
	assert.True(t, errors.Is(err, ErrDegenerateBounds))
	assert.Equal(t, StepNormalize, res.Failed)
	assert.NotNil(t, res.Document)
	assert.Nil(t, res.Buffers)

	_, err = Process(Asset{Geometry: cubeObj})
	assert.True(t, errors.Is(err, ErrInvalidDisplaySize))
}

func TestAssetFromFiles(t *testing.T) {
	files := []AssetFile{
		{Path: "model/texture.png", Contents: []byte{0x89, 'P', 'N', 'G'}},
		{Path: "model/a.MTL", Contents: []byte(cubeMtl)},
		{Path: "model/CUBE.OBJ", Contents: []byte(cubeObj)},
		{Path: "model/b.mtl", Contents: []byte(blueMtl)},
		{Path: "model/second.obj", Contents: []byte(triangleObj)},
	}
	a, err := AssetFromFiles("cube", files, 2)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "cube", a.Name)
	assert.Equal(t, cubeObj, a.Geometry)
	assert.Equal(t, []string{cubeMtl, blueMtl}, a.Materials)
	assert.Equal(t, 2.0, a.DisplaySize)

	_, err = AssetFromFiles("none", files[:2], 1)
	assert.True(t, errors.Is(err, ErrNoGeometry))
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "", StatusMessage(nil))
	_, err := Process(Asset{Geometry: cubeObj, Materials: []string{"newmtl x\nKd 1\n"}, DisplaySize: 1})
	assert.Equal(t, "Failed to parse MTL file.", StatusMessage(err))
	_, err = Process(Asset{Geometry: "v 1 2\n", DisplaySize: 1})
	assert.Equal(t, "Failed to parse OBJ file.", StatusMessage(err))
	_, err = Process(Asset{Geometry: "v 0 0 0\nv 1 NaN 0\nv 0 1 0\nf 1 2 3\n", DisplaySize: 1})
	assert.Equal(t, "Failed to parse OBJ file.", StatusMessage(err))
	assert.Equal(t, "Loader is shut down.", StatusMessage(ErrLoaderClosed))
	assert.Equal(t, "Failed to load model. See logs.", StatusMessage(errors.New("boom")))
}

func TestLoaderPublishesToStage(t *testing.T) {
	var logs bytes.Buffer
	options := DefaultLoaderOptions()
	options.DisplaySize = 4
	options.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	stage := &Stage{}
	loader := NewLoaderWithOptions(stage, options)

	bad, err := loader.Load(Asset{Name: "bad", Geometry: "v 0 0 0\n"})
	assert.NoError(t, err)
	good, err := loader.Load(Asset{Name: "cube", Geometry: cubeObj, Materials: []string{cubeMtl}})
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = bad.Wait(ctx)
	assert.True(t, errors.Is(err, ErrEmptyGeometry))

	res, err := good.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Same(t, res.Buffers, stage.Current())
	assert.Equal(t, 2.0, res.Transform.Scale)
	// blue is not in the library
	assert.Equal(t, DefaultColor, res.Buffers.Color(35))

	assert.NoError(t, loader.Close())
	_, err = loader.Load(Asset{Geometry: cubeObj})
	assert.True(t, errors.Is(err, ErrLoaderClosed))

	assert.Contains(t, logs.String(), "asset conversion failed")
	assert.Contains(t, logs.String(), "asset ready")
}

func TestLoaderKeepsPreviousModelOnFailure(t *testing.T) {
	options := DefaultLoaderOptions()
	options.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	stage := &Stage{}
	loader := NewLoaderWithOptions(stage, options)
	defer loader.Close()

	ctx := context.Background()
	p, err := loader.Load(Asset{Geometry: cubeObj})
	assert.NoError(t, err)
	first, err := p.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}

	p, err = loader.Load(Asset{Geometry: cubeObj + "f 0 1 2\n"})
	assert.NoError(t, err)
	<-p.Done()
	_, err = p.Wait(ctx)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Same(t, first.Buffers, stage.Current())
}

func TestLoaderCloseWithFullQueue(t *testing.T) {
	options := DefaultLoaderOptions()
	options.QueueSize = 0
	options.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	stage := &Stage{}
	loader := NewLoaderWithOptions(stage, options)

	const n = 4
	pending := make(chan *Pending, n)
	for i := 0; i < n; i++ {
		go func() {
			p, err := loader.Load(Asset{Geometry: cubeObj})
			if err != nil {
				pending <- nil
				return
			}
			pending <- p
		}()
	}

	assert.NoError(t, loader.Close())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := 0; i < n; i++ {
		// every Load either was refused or ran to completion
		if p := <-pending; p != nil {
			_, err := p.Wait(ctx)
			assert.NoError(t, err)
		}
	}
}
