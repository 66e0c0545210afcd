package scenario

import (
	"strings"

	"github.com/d5/tengo/v2"
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/ecs/entity"
)

func (r *Runner) engine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["throw_ball"] = &tengo.UserFunction{Name: "throw_ball", Value: func(args ...tengo.Object) (tengo.Object, error) {
		throw := r.scene.Spec.Throw
		speed := throw.Speed
		if len(args) > 0 {
			if v, ok := tengo.ToFloat64(args[0]); ok && v > 0 {
				speed = v
			}
		}
		x, y, ok := r.scene.GlassPosition()
		if !ok {
			return tengo.FalseValue, nil
		}
		vx, vy := entity.ThrowVelocity(throw.X, throw.Y, x, y, speed)
		return boolObject(r.scene.LaunchBall(throw.X, throw.Y, vx, vy, throw.Spin) == nil), nil
	}}

	values["drop_ball"] = &tengo.UserFunction{Name: "drop_ball", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return boolObject(r.scene.DropBall() == nil), nil
		}
		var v [4]float64
		for i := range min(len(args), len(v)) {
			f, ok := tengo.ToFloat64(args[i])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "drop_ball", Expected: "float", Found: args[i].TypeName()}
			}
			v[i] = f
		}
		return boolObject(r.scene.LaunchBall(v[0], v[1], v[2], v[3], 0) == nil), nil
	}}

	values["step"] = &tengo.UserFunction{Name: "step", Value: func(args ...tengo.Object) (tengo.Object, error) {
		n := 1
		if len(args) > 0 {
			if v, ok := tengo.ToInt(args[0]); ok {
				n = v
			}
		}
		r.Step(n)
		return &tengo.Int{Value: int64(r.report.Steps)}, nil
	}}

	values["hit_glass"] = &tengo.UserFunction{Name: "hit_glass", Value: func(args ...tengo.Object) (tengo.Object, error) {
		speed, err := floatArg("hit_glass", args)
		if err != nil {
			return nil, err
		}
		return boolObject(r.HitGlass(speed)), nil
	}}

	values["hit_ball"] = &tengo.UserFunction{Name: "hit_ball", Value: func(args ...tengo.Object) (tengo.Object, error) {
		force, err := floatArg("hit_ball", args)
		if err != nil {
			return nil, err
		}
		return boolObject(r.HitBall(force)), nil
	}}

	values["radius"] = &tengo.UserFunction{Name: "radius", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: r.scene.BallRadius()}, nil
	}}

	values["broken"] = &tengo.UserFunction{Name: "broken", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(r.scene.GlassBroken()), nil
	}}

	values["fragments"] = &tengo.UserFunction{Name: "fragments", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(r.scene.FragmentCount())}, nil
	}}

	values["clinks"] = &tengo.UserFunction{Name: "clinks", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(len(r.recorder.Requests()))}, nil
	}}

	values["set_static"] = &tengo.UserFunction{Name: "set_static", Value: func(args ...tengo.Object) (tengo.Object, error) {
		static := true
		if len(args) > 0 {
			static = !args[0].IsFalsy()
		}
		r.scene.SetGlassStatic(static)
		return boolObject(static), nil
	}}

	values["reset"] = &tengo.UserFunction{Name: "reset", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if err := r.scene.Reset(); err != nil {
			return nil, err
		}
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		msg := joinArgs(args)
		r.report.Logs = append(r.report.Logs, msg)
		r.logger.Info(msg, zap.Int("step", r.report.Steps))
		return tengo.UndefinedValue, nil
	}}

	values["expect"] = &tengo.UserFunction{Name: "expect", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) == 0 {
			return nil, tengo.ErrWrongNumArguments
		}
		if !args[0].IsFalsy() {
			return tengo.TrueValue, nil
		}
		msg := "expectation failed"
		if len(args) > 1 {
			msg = joinArgs(args[1:])
		}
		r.report.Failures = append(r.report.Failures, msg)
		r.logger.Warn("expectation failed", zap.String("message", msg), zap.Int("step", r.report.Steps))
		return tengo.FalseValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func floatArg(name string, args []tengo.Object) (float64, error) {
	if len(args) < 1 {
		return 0, tengo.ErrWrongNumArguments
	}
	v, ok := tengo.ToFloat64(args[0])
	if !ok {
		return 0, tengo.ErrInvalidArgumentType{Name: name, Expected: "float", Found: args[0].TypeName()}
	}
	return v, nil
}

func joinArgs(args []tengo.Object) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if s, ok := a.(*tengo.String); ok {
			parts = append(parts, s.Value)
			continue
		}
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}
