package component

// InitialPose remembers where an entity was placed so it can be put back.
type InitialPose struct {
	Transform Transform
	Static    bool
}

var InitialPoseComponent = NewComponent[InitialPose]()
