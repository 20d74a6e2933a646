// Package app wires a scene, camera, renderer, background loader and tweak panel into one Context driven by Frame.
// There is no global state: every demo builds its own Context and calls Frame once per tick from the goroutine that
// owns the scene.
package app

import (
	"context"
	"image"
	"io/fs"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/openhuman/facegraph"
	"github.com/openhuman/facegraph/config"
	"github.com/openhuman/facegraph/loader"
	"github.com/openhuman/facegraph/tweak"
	"github.com/pkg/errors"
)

// Context owns everything a running demo needs.
type Context struct {
	Config   *config.Config
	Scene    *facegraph.Scene
	Camera   *facegraph.Camera
	Renderer *facegraph.Renderer
	Loader   *loader.Queue
	Panel    *tweak.Panel
	Textures config.TextureSet // Textures shared between material presets

	Ambient *facegraph.Light
	Direct  *facegraph.Light // Parented to the camera

	// TextureFS is where textures and environments are read from; nil means the OS filesystem.
	TextureFS fs.FS

	// Time is the total time passed to Frame, in seconds.
	Time float64

	tweens       []*facegraph.Tween
	players      []*facegraph.AnimationPlayer
	environments map[string]*facegraph.Texture
	environment  string
	server       *tweak.Server
	up           mgl64.Vec3
}

// New builds a Context from the configuration, drawing through backend. The scene starts with the camera, an ambient
// light, and a directional light that follows the camera.
func New(cfg *config.Config, backend facegraph.Backend) (*Context, error) {

	if cfg == nil {
		cfg = config.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	renderer, err := facegraph.NewRenderer(backend)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Config:       cfg,
		Scene:        facegraph.NewScene(cfg.Window.Title),
		Camera:       facegraph.NewCamera("Camera"),
		Renderer:     renderer,
		Loader:       loader.NewQueue(),
		Panel:        tweak.NewPanel(),
		Textures:     config.TextureSet{},
		environments: map[string]*facegraph.Texture{},
		up:           mgl64.Vec3{0, 1, 0},
	}

	ctx.Scene.Background = facegraph.NewColorFromHex(cfg.Scene.Background)
	ctx.Scene.ToneMapping = facegraph.ParseToneMapping(cfg.Scene.ToneMapping)
	ctx.Scene.Exposure = cfg.Scene.Exposure

	aspect := float64(cfg.Window.Width) / float64(cfg.Window.Height)
	if err := ctx.Camera.SetPerspective(cfg.Camera.Radians(), aspect, cfg.Camera.Near, cfg.Camera.Far); err != nil {
		return nil, err
	}

	if err := ctx.Camera.SetLocalPosition(mgl64.Vec3(cfg.Camera.Position)); err != nil {
		return nil, err
	}

	ctx.Scene.Add(ctx.Camera.Node)
	ctx.aimCamera()

	ambient := facegraph.NewColorFromHex(cfg.Lights.AmbientColor)
	ctx.Ambient = facegraph.NewAmbientLight("Ambient", ambient.R, ambient.G, ambient.B, float32(cfg.Lights.AmbientIntensity))
	ctx.Scene.Add(ctx.Ambient.Node)

	direct := facegraph.NewColorFromHex(cfg.Lights.DirectColor)
	ctx.Direct = facegraph.NewDirectionalLight("Direct", direct.R, direct.G, direct.B, float32(cfg.Lights.DirectIntensity))
	if err := ctx.Direct.SetLocalPosition(mgl64.Vec3(cfg.Lights.DirectPosition)); err != nil {
		return nil, err
	}
	ctx.Camera.AddChildren(ctx.Direct.Node)

	for _, env := range cfg.Environments {
		if env.Path == "" {
			continue
		}
		tex := facegraph.NewTexture(env.Name)
		tex.Path = env.Path
		ctx.environments[env.Name] = tex
	}

	return ctx, nil

}

// aimCamera points the camera at the configured target.
func (ctx *Context) aimCamera() {
	ctx.Camera.Root().UpdateWorldMatrix(false)
	ctx.Camera.LookAt(mgl64.Vec3(ctx.Config.Camera.Target), ctx.up)
}

// AddTween adds a Tween to be advanced every Frame. Tweens are dropped once they finish.
func (ctx *Context) AddTween(tween *facegraph.Tween) {
	ctx.tweens = append(ctx.tweens, tween)
}

// Tweens returns the Tweens still running.
func (ctx *Context) Tweens() []*facegraph.Tween {
	return ctx.tweens
}

// AddAnimationPlayer adds a player to be advanced every Frame.
func (ctx *Context) AddAnimationPlayer(player *facegraph.AnimationPlayer) {
	ctx.players = append(ctx.players, player)
}

// SetEnvironment switches the scene's environment to the one with the given name or ID. Environments without an image
// (and "") clear it. The environment's image is loaded in the background the first time it's used; until it arrives
// the scene has no environment.
func (ctx *Context) SetEnvironment(name string) error {

	if name == "" {
		ctx.environment = ""
		ctx.Scene.Environment = nil
		return nil
	}

	env, ok := ctx.Config.Environment(name)
	if !ok {
		return errors.Wrapf(facegraph.ErrInvalidArgument, "unknown environment %q", name)
	}

	ctx.environment = env.Name

	tex := ctx.environments[env.Name]
	if tex == nil {
		ctx.Scene.Environment = nil
		return nil
	}

	if tex.Loaded() {
		ctx.Scene.Environment = tex
		return nil
	}

	ctx.Scene.Environment = nil

	loader.Go(ctx.Loader,
		func(c context.Context) (image.Image, error) {
			return loader.LoadImage(c, ctx.TextureFS, tex.Path)
		},
		func(img image.Image, err error) {
			if err != nil {
				log.Println("Warning: environment", env.Name, "not loaded:", err)
				return
			}
			tex.Resolve(img)
			// Only take effect if it's still the chosen environment.
			if ctx.environment == env.Name {
				ctx.Scene.Environment = tex
			}
		},
	)

	return nil

}

// Environment returns the name of the chosen environment.
func (ctx *Context) Environment() string {
	return ctx.environment
}

// Resize updates the camera's aspect ratio for a new window size.
func (ctx *Context) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(facegraph.ErrInvalidArgument, "window size %dx%d", width, height)
	}
	return ctx.Camera.SetAspect(float64(width) / float64(height))
}

// Frame runs one frame: Update followed by Render.
func (ctx *Context) Frame(dt float64) error {
	ctx.Update(dt)
	return ctx.Render()
}

// Update delivers finished background loads, applies queued panel edits, advances animations and tweens by dt
// seconds, and orbits the camera if auto-rotate is on.
func (ctx *Context) Update(dt float64) {

	ctx.Loader.Drain()
	ctx.Panel.Apply()

	for _, player := range ctx.players {
		player.Update(dt)
	}

	running := ctx.tweens[:0]
	for _, tween := range ctx.tweens {
		if !tween.Update(dt) {
			running = append(running, tween)
		}
	}
	for i := len(running); i < len(ctx.tweens); i++ {
		ctx.tweens[i] = nil
	}
	ctx.tweens = running

	if ctx.Config.Camera.AutoRotate {
		ctx.orbit(ctx.Config.Camera.AutoRotateSpeed * dt)
	}

	ctx.Time += dt

}

// Render draws the scene from the camera.
func (ctx *Context) Render() error {
	return ctx.Renderer.Render(ctx.Scene, ctx.Camera)
}

// orbit swings the camera around the vertical axis through its target by angle radians.
func (ctx *Context) orbit(angle float64) {
	target := mgl64.Vec3(ctx.Config.Camera.Target)
	offset := ctx.Camera.LocalPosition().Sub(target)
	offset = mgl64.Rotate3DY(angle).Mul3x1(offset)
	if err := ctx.Camera.SetLocalPosition(target.Add(offset)); err != nil {
		return
	}
	ctx.aimCamera()
}

// ServePanel starts the tweak panel's HTTP server if the configuration enables it.
func (ctx *Context) ServePanel() error {
	if !ctx.Config.Tweak.Enabled || ctx.server != nil {
		return nil
	}
	server, err := ctx.Panel.Serve(ctx.Config.Tweak.Address)
	if err != nil {
		return err
	}
	ctx.server = server
	return nil
}

// Close cancels outstanding loads and stops the panel server.
func (ctx *Context) Close() error {

	ctx.Loader.Close()

	if ctx.server != nil {
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := ctx.server.Close(shutdown)
		ctx.server = nil
		return err
	}

	return nil

}
