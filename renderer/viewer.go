// Package renderer draws the simulation in a raylib window.
package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/scene"
	"github.com/pthm-cable/swarm/systems"
)

const (
	agentRadius   = 0.3
	headingLength = 1.2
	orbitSpeed    = 0.005
	zoomStep      = 0.9
)

var (
	boidColor     = rl.NewColor(120, 200, 255, 255)
	crowdColor    = rl.NewColor(255, 180, 90, 255)
	headingColor  = rl.NewColor(255, 255, 255, 160)
	obstacleColor = rl.NewColor(140, 140, 160, 255)
	boundsColor   = rl.NewColor(80, 80, 100, 255)
	background    = rl.NewColor(18, 20, 28, 255)
)

// HUDData holds the values shown in the overlay.
type HUDData struct {
	Kind         components.Kind
	Agents       int
	Tick         int32
	TickUS       float64
	Polarization float64
	Paused       bool
}

// Viewer renders agent poses and the static scene with an orbit camera, and
// exposes pause and single-step controls.
type Viewer struct {
	cfg   *config.Config
	scene *scene.Scene
	world systems.WorldBinding
	cam   *camera.Camera
	view  *systems.Poses

	paused bool
	step   bool
}

// NewViewer creates a viewer for world. It must be created after the
// raylib window is open.
func NewViewer(cfg *config.Config, sc *scene.Scene, world systems.WorldBinding) *Viewer {
	distance := cfg.Scene.Bounds * 1.5
	if distance <= 0 {
		distance = cfg.Population.SpawnRadius * 3
	}
	return &Viewer{
		cfg:   cfg,
		scene: sc,
		world: world,
		cam:   camera.New(r3.Vec{Y: cfg.Scene.GroundHeight}, distance),
		view:  systems.NewPoses(world.Len()),
	}
}

// Paused reports whether the simulation should hold.
func (v *Viewer) Paused() bool {
	return v.paused
}

// ShouldTick reports whether the caller should advance the simulation this
// frame, consuming a pending single step.
func (v *Viewer) ShouldTick() bool {
	if !v.paused {
		return true
	}
	if v.step {
		v.step = false
		return true
	}
	return false
}

// HandleInput updates the camera and keyboard controls.
func (v *Viewer) HandleInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Orbit(float64(-d.X)*orbitSpeed, float64(d.Y)*orbitSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if wheel > 0 {
			v.cam.Zoom(zoomStep)
		} else {
			v.cam.Zoom(1 / zoomStep)
		}
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.paused {
		v.step = true
	}
}

// Draw renders one frame.
func (v *Viewer) Draw(hud HUDData) {
	v.world.ReadPoses(v.view)

	rl.BeginDrawing()
	rl.ClearBackground(background)

	rl.BeginMode3D(v.camera3D())
	v.drawScene()
	v.drawAgents(hud.Kind)
	rl.EndMode3D()

	v.drawHUD(hud)
	v.drawControls()

	rl.EndDrawing()
}

func (v *Viewer) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(v.cam.Eye()),
		Target:     vec3(v.cam.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

func (v *Viewer) drawScene() {
	sc := v.cfg.Scene
	if sc.Ground {
		slices := int32(sc.Bounds)
		if slices <= 0 {
			slices = 50
		}
		rl.PushMatrix()
		rl.Translatef(0, float32(sc.GroundHeight), 0)
		rl.DrawGrid(slices*2, 1)
		rl.PopMatrix()
	}
	if b := float32(sc.Bounds); b > 0 {
		rl.DrawCubeWires(rl.NewVector3(0, 0, 0), 2*b, 2*b, 2*b, boundsColor)
	}
	for _, sp := range v.scene.Spheres() {
		rl.DrawSphereWires(vec3(sp.Center), float32(sp.Radius), 8, 12, obstacleColor)
	}
}

func (v *Viewer) drawAgents(kind components.Kind) {
	color := boidColor
	if kind == components.KindCrowd {
		color = crowdColor
	}
	for i := 0; i < v.view.Len(); i++ {
		pos := v.view.Positions[i]
		tip := r3.Add(pos, r3.Scale(headingLength, v.view.Forwards[i]))
		rl.DrawSphereEx(vec3(pos), agentRadius, 4, 6, color)
		rl.DrawLine3D(vec3(pos), vec3(tip), headingColor)
	}
}

func (v *Viewer) drawHUD(hud HUDData) {
	rl.DrawText("Swarm", 10, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Mode: %s | Agents: %d | Tick: %d | FPS: %d", hud.Kind, hud.Agents, hud.Tick, rl.GetFPS()),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %.0fus | Polarization: %.3f", hud.TickUS, hud.Polarization),
		10, 55, 16, rl.LightGray,
	)
	if hud.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

func (v *Viewer) drawControls() {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())

	label := "Pause"
	if v.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: w - 260, Y: 10, Width: 120, Height: 30}, label) {
		v.paused = !v.paused
	}
	if gui.Button(rl.Rectangle{X: w - 130, Y: 10, Width: 120, Height: 30}, "Step") {
		v.paused = true
		v.step = true
	}

	rl.DrawText("RMB drag: orbit | Wheel: zoom | Space: pause | .: step", 10, int32(h)-25, 14, rl.Gray)
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
