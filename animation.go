package facegraph

import (
	"log"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	TrackTypePosition = "Pos"
	TrackTypeScale    = "Sca"
	TrackTypeRotation = "Rot"
	TrackTypeMorph    = "Morph" // Morph target influences for every Drawable on the channel's node
)

type FinishMode int

const (
	FinishModeLoop     FinishMode = iota // Loop on animation completion
	FinishModePingPong                   // Reverse on animation completion; OnFinish is called after the return trip
	FinishModeStop                       // Stop on animation completion
)

// Data wraps a keyframe's value: a mgl64.Vec3 for position and scale tracks, a mgl64.Quat for rotation tracks, and a
// []float64 for morph tracks.
type Data struct {
	contents any
}

func (data Data) AsVector() mgl64.Vec3 {
	return data.contents.(mgl64.Vec3)
}

func (data Data) AsQuaternion() mgl64.Quat {
	return data.contents.(mgl64.Quat)
}

func (data Data) AsFloats() []float64 {
	return data.contents.([]float64)
}

type Keyframe struct {
	Time float64
	Data Data
}

// AnimationTrack is a time-sorted list of keyframes for one property of one node.
type AnimationTrack struct {
	Type      string
	Keyframes []Keyframe
}

func newAnimationTrack(trackType string) *AnimationTrack {
	return &AnimationTrack{Type: trackType}
}

// AddKeyframe inserts a keyframe, keeping the track sorted by time.
func (track *AnimationTrack) AddKeyframe(time float64, data any) {
	kf := Keyframe{Time: time, Data: Data{data}}
	i := sort.Search(len(track.Keyframes), func(i int) bool { return track.Keyframes[i].Time > time })
	track.Keyframes = append(track.Keyframes, Keyframe{})
	copy(track.Keyframes[i+1:], track.Keyframes[i:])
	track.Keyframes[i] = kf
}

// span returns the keyframes surrounding time and how far between them time lies.
func (track *AnimationTrack) span(time float64) (first, last Keyframe, t float64) {

	keys := track.Keyframes

	if time <= keys[0].Time {
		return keys[0], keys[0], 0
	}
	if time >= keys[len(keys)-1].Time {
		return keys[len(keys)-1], keys[len(keys)-1], 0
	}

	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > time })
	first, last = keys[i-1], keys[i]

	return first, last, (time - first.Time) / (last.Time - first.Time)

}

// ValueAsVector returns the track's linearly interpolated vector value at the given time.
func (track *AnimationTrack) ValueAsVector(time float64) (mgl64.Vec3, bool) {
	if len(track.Keyframes) == 0 {
		return mgl64.Vec3{}, false
	}
	first, last, t := track.span(time)
	fd, ld := first.Data.AsVector(), last.Data.AsVector()
	return fd.Add(ld.Sub(fd).Mul(t)), true
}

// ValueAsQuaternion returns the track's spherically interpolated rotation at the given time.
func (track *AnimationTrack) ValueAsQuaternion(time float64) (mgl64.Quat, bool) {
	if len(track.Keyframes) == 0 {
		return mgl64.QuatIdent(), false
	}
	first, last, t := track.span(time)
	return Slerp(first.Data.AsQuaternion(), last.Data.AsQuaternion(), t), true
}

// ValueAsFloats returns the track's linearly interpolated weights at the given time.
func (track *AnimationTrack) ValueAsFloats(time float64) ([]float64, bool) {
	if len(track.Keyframes) == 0 {
		return nil, false
	}
	first, last, t := track.span(time)
	fd, ld := first.Data.AsFloats(), last.Data.AsFloats()
	out := make([]float64, min(len(fd), len(ld)))
	for i := range out {
		out[i] = fd[i] + (ld[i]-fd[i])*t
	}
	return out, true
}

// AnimationChannel holds the tracks animating one node, found by name.
type AnimationChannel struct {
	Name   string
	Tracks map[string]*AnimationTrack
}

func NewAnimationChannel(name string) *AnimationChannel {
	return &AnimationChannel{
		Name:   name,
		Tracks: map[string]*AnimationTrack{},
	}
}

// AddTrack returns the channel's track of the given type, creating it if needed.
func (channel *AnimationChannel) AddTrack(trackType string) *AnimationTrack {
	if track, ok := channel.Tracks[trackType]; ok {
		return track
	}
	newTrack := newAnimationTrack(trackType)
	channel.Tracks[trackType] = newTrack
	return newTrack
}

type Animation struct {
	Name     string
	Channels map[string]*AnimationChannel
	Length   float64 // Length of the animation in seconds
}

func NewAnimation(name string) *Animation {
	return &Animation{
		Name:     name,
		Channels: map[string]*AnimationChannel{},
	}
}

// AddChannel returns the channel animating the named node, creating it if needed.
func (animation *Animation) AddChannel(name string) *AnimationChannel {
	if channel, ok := animation.Channels[name]; ok {
		return channel
	}
	newChannel := NewAnimationChannel(name)
	animation.Channels[name] = newChannel
	return newChannel
}

// UpdateLength sets Length to the time of the last keyframe in any track.
func (animation *Animation) UpdateLength() {
	animation.Length = 0
	for _, channel := range animation.Channels {
		for _, track := range channel.Tracks {
			if n := len(track.Keyframes); n > 0 {
				animation.Length = math.Max(animation.Length, track.Keyframes[n-1].Time)
			}
		}
	}
}

// AnimationPlayer plays an Animation back on a node tree, matching channels to nodes by name under RootNode.
type AnimationPlayer struct {
	RootNode        *Node
	ChannelsToNodes map[*AnimationChannel]*Node
	ChannelsUpdated bool
	Animation       *Animation
	Playhead        float64
	PlaySpeed       float64
	Playing         bool
	FinishMode      FinishMode
	OnFinish        func()
}

func NewAnimationPlayer(root *Node) *AnimationPlayer {
	return &AnimationPlayer{
		RootNode:   root,
		PlaySpeed:  1,
		FinishMode: FinishModeStop,
	}
}

// SetRoot changes the node tree the player animates.
func (ap *AnimationPlayer) SetRoot(node *Node) {
	ap.RootNode = node
	ap.ChannelsUpdated = false
}

// Play starts playing the given animation from the beginning, unless it's already playing.
func (ap *AnimationPlayer) Play(animation *Animation) {

	if ap.Animation != animation || !ap.Playing {
		ap.Animation = animation
		ap.Playhead = 0.0
		ap.Playing = true
		ap.ChannelsUpdated = false
	}

}

// AssignChannels maps the current animation's channels to nodes by name.
func (ap *AnimationPlayer) AssignChannels() {

	ap.ChannelsToNodes = map[*AnimationChannel]*Node{}

	if ap.Animation != nil && ap.RootNode != nil {

		for _, channel := range ap.Animation.Channels {

			if ap.RootNode.Name() == channel.Name {
				ap.ChannelsToNodes[channel] = ap.RootNode
				continue
			}

			ap.RootNode.Walk(func(n *Node) bool {
				if _, found := ap.ChannelsToNodes[channel]; !found && n.Name() == channel.Name {
					ap.ChannelsToNodes[channel] = n
				}
				return true
			})

		}

	}

	ap.ChannelsUpdated = true

}

// Update applies the animation at the current playhead to the matched nodes, then advances the playhead by dt seconds.
func (ap *AnimationPlayer) Update(dt float64) {

	if !ap.Playing || ap.Animation == nil {
		return
	}

	if !ap.ChannelsUpdated {
		ap.AssignChannels()
	}

	for _, channel := range ap.Animation.Channels {

		node := ap.ChannelsToNodes[channel]

		if node == nil {
			log.Println("Warning: Cannot find matching node for channel " + channel.Name + " for root " + ap.RootNode.Name())
			continue
		}

		ap.applyChannel(channel, node)

	}

	ap.Playhead += dt * ap.PlaySpeed
	length := ap.Animation.Length

	if ap.Playhead <= length && ap.Playhead >= 0 {
		return
	}

	switch ap.FinishMode {

	case FinishModeLoop:
		if length > 0 {
			ap.Playhead = math.Mod(ap.Playhead, length)
			if ap.Playhead < 0 {
				ap.Playhead += length
			}
		} else {
			ap.Playhead = 0
		}
		if ap.OnFinish != nil {
			ap.OnFinish()
		}

	case FinishModePingPong:
		if ap.Playhead > length {
			ap.Playhead = length
		} else {
			ap.Playhead = 0
			if ap.OnFinish != nil {
				ap.OnFinish()
			}
		}
		ap.PlaySpeed *= -1

	case FinishModeStop:
		ap.Playhead = clamp(ap.Playhead, 0, length)
		ap.Playing = false
		if ap.OnFinish != nil {
			ap.OnFinish()
		}

	}

}

func (ap *AnimationPlayer) applyChannel(channel *AnimationChannel, node *Node) {

	var err error

	if track, exists := channel.Tracks[TrackTypePosition]; exists {
		if v, ok := track.ValueAsVector(ap.Playhead); ok {
			err = node.SetLocalPosition(v)
		}
	}

	if track, exists := channel.Tracks[TrackTypeScale]; exists && err == nil {
		if v, ok := track.ValueAsVector(ap.Playhead); ok {
			err = node.SetLocalScale(v)
		}
	}

	if track, exists := channel.Tracks[TrackTypeRotation]; exists && err == nil {
		if q, ok := track.ValueAsQuaternion(ap.Playhead); ok {
			err = node.SetLocalRotation(q)
		}
	}

	if err != nil {
		log.Println("Warning: animation " + ap.Animation.Name + " channel " + channel.Name + ": " + err.Error())
	}

	if track, exists := channel.Tracks[TrackTypeMorph]; exists {
		if weights, ok := track.ValueAsFloats(ap.Playhead); ok {
			for _, d := range node.drawables {
				n := min(len(weights), len(d.MorphInfluences))
				copy(d.MorphInfluences[:n], weights[:n])
			}
		}
	}

}
