package domain

import "fmt"

// HumanRole identifies a canonical humanoid bone role.
// The zero value, RoleNone, marks a bone without a canonical role.
type HumanRole uint8

const (
	RoleNone HumanRole = iota
	RoleHips
	RoleLeftUpperLeg
	RoleRightUpperLeg
	RoleLeftLowerLeg
	RoleRightLowerLeg
	RoleLeftFoot
	RoleRightFoot
	RoleSpine
	RoleChest
	RoleNeck
	RoleHead
	RoleLeftShoulder
	RoleRightShoulder
	RoleLeftUpperArm
	RoleRightUpperArm
	RoleLeftLowerArm
	RoleRightLowerArm
	RoleLeftHand
	RoleRightHand
	RoleLeftToes
	RoleRightToes
	RoleLeftEye
	RoleRightEye
	RoleJaw
	RoleLeftThumbProximal
	RoleLeftThumbIntermediate
	RoleLeftThumbDistal
	RoleLeftIndexProximal
	RoleLeftIndexIntermediate
	RoleLeftIndexDistal
	RoleLeftMiddleProximal
	RoleLeftMiddleIntermediate
	RoleLeftMiddleDistal
	RoleLeftRingProximal
	RoleLeftRingIntermediate
	RoleLeftRingDistal
	RoleLeftLittleProximal
	RoleLeftLittleIntermediate
	RoleLeftLittleDistal
	RoleRightThumbProximal
	RoleRightThumbIntermediate
	RoleRightThumbDistal
	RoleRightIndexProximal
	RoleRightIndexIntermediate
	RoleRightIndexDistal
	RoleRightMiddleProximal
	RoleRightMiddleIntermediate
	RoleRightMiddleDistal
	RoleRightRingProximal
	RoleRightRingIntermediate
	RoleRightRingDistal
	RoleRightLittleProximal
	RoleRightLittleIntermediate
	RoleRightLittleDistal
	RoleUpperChest

	roleCount
)

// Side is the body side a role belongs to.
type Side uint8

const (
	SideCenter Side = iota
	SideLeft
	SideRight
)

// RoleInfo is the static metadata of a role.
type RoleInfo struct {
	Name   string
	Side   Side
	Hand   bool // left or right hand
	Finger bool
}

var roleTable = [roleCount]RoleInfo{
	RoleNone:                    {Name: "None"},
	RoleHips:                    {Name: "Hips"},
	RoleLeftUpperLeg:            {Name: "LeftUpperLeg", Side: SideLeft},
	RoleRightUpperLeg:           {Name: "RightUpperLeg", Side: SideRight},
	RoleLeftLowerLeg:            {Name: "LeftLowerLeg", Side: SideLeft},
	RoleRightLowerLeg:           {Name: "RightLowerLeg", Side: SideRight},
	RoleLeftFoot:                {Name: "LeftFoot", Side: SideLeft},
	RoleRightFoot:               {Name: "RightFoot", Side: SideRight},
	RoleSpine:                   {Name: "Spine"},
	RoleChest:                   {Name: "Chest"},
	RoleNeck:                    {Name: "Neck"},
	RoleHead:                    {Name: "Head"},
	RoleLeftShoulder:            {Name: "LeftShoulder", Side: SideLeft},
	RoleRightShoulder:           {Name: "RightShoulder", Side: SideRight},
	RoleLeftUpperArm:            {Name: "LeftUpperArm", Side: SideLeft},
	RoleRightUpperArm:           {Name: "RightUpperArm", Side: SideRight},
	RoleLeftLowerArm:            {Name: "LeftLowerArm", Side: SideLeft},
	RoleRightLowerArm:           {Name: "RightLowerArm", Side: SideRight},
	RoleLeftHand:                {Name: "LeftHand", Side: SideLeft, Hand: true},
	RoleRightHand:               {Name: "RightHand", Side: SideRight, Hand: true},
	RoleLeftToes:                {Name: "LeftToes", Side: SideLeft},
	RoleRightToes:               {Name: "RightToes", Side: SideRight},
	RoleLeftEye:                 {Name: "LeftEye", Side: SideLeft},
	RoleRightEye:                {Name: "RightEye", Side: SideRight},
	RoleJaw:                     {Name: "Jaw"},
	RoleLeftThumbProximal:       {Name: "LeftThumbProximal", Side: SideLeft, Finger: true},
	RoleLeftThumbIntermediate:   {Name: "LeftThumbIntermediate", Side: SideLeft, Finger: true},
	RoleLeftThumbDistal:         {Name: "LeftThumbDistal", Side: SideLeft, Finger: true},
	RoleLeftIndexProximal:       {Name: "LeftIndexProximal", Side: SideLeft, Finger: true},
	RoleLeftIndexIntermediate:   {Name: "LeftIndexIntermediate", Side: SideLeft, Finger: true},
	RoleLeftIndexDistal:         {Name: "LeftIndexDistal", Side: SideLeft, Finger: true},
	RoleLeftMiddleProximal:      {Name: "LeftMiddleProximal", Side: SideLeft, Finger: true},
	RoleLeftMiddleIntermediate:  {Name: "LeftMiddleIntermediate", Side: SideLeft, Finger: true},
	RoleLeftMiddleDistal:        {Name: "LeftMiddleDistal", Side: SideLeft, Finger: true},
	RoleLeftRingProximal:        {Name: "LeftRingProximal", Side: SideLeft, Finger: true},
	RoleLeftRingIntermediate:    {Name: "LeftRingIntermediate", Side: SideLeft, Finger: true},
	RoleLeftRingDistal:          {Name: "LeftRingDistal", Side: SideLeft, Finger: true},
	RoleLeftLittleProximal:      {Name: "LeftLittleProximal", Side: SideLeft, Finger: true},
	RoleLeftLittleIntermediate:  {Name: "LeftLittleIntermediate", Side: SideLeft, Finger: true},
	RoleLeftLittleDistal:        {Name: "LeftLittleDistal", Side: SideLeft, Finger: true},
	RoleRightThumbProximal:      {Name: "RightThumbProximal", Side: SideRight, Finger: true},
	RoleRightThumbIntermediate:  {Name: "RightThumbIntermediate", Side: SideRight, Finger: true},
	RoleRightThumbDistal:        {Name: "RightThumbDistal", Side: SideRight, Finger: true},
	RoleRightIndexProximal:      {Name: "RightIndexProximal", Side: SideRight, Finger: true},
	RoleRightIndexIntermediate:  {Name: "RightIndexIntermediate", Side: SideRight, Finger: true},
	RoleRightIndexDistal:        {Name: "RightIndexDistal", Side: SideRight, Finger: true},
	RoleRightMiddleProximal:     {Name: "RightMiddleProximal", Side: SideRight, Finger: true},
	RoleRightMiddleIntermediate: {Name: "RightMiddleIntermediate", Side: SideRight, Finger: true},
	RoleRightMiddleDistal:       {Name: "RightMiddleDistal", Side: SideRight, Finger: true},
	RoleRightRingProximal:       {Name: "RightRingProximal", Side: SideRight, Finger: true},
	RoleRightRingIntermediate:   {Name: "RightRingIntermediate", Side: SideRight, Finger: true},
	RoleRightRingDistal:         {Name: "RightRingDistal", Side: SideRight, Finger: true},
	RoleRightLittleProximal:     {Name: "RightLittleProximal", Side: SideRight, Finger: true},
	RoleRightLittleIntermediate: {Name: "RightLittleIntermediate", Side: SideRight, Finger: true},
	RoleRightLittleDistal:       {Name: "RightLittleDistal", Side: SideRight, Finger: true},
	RoleUpperChest:              {Name: "UpperChest"},
}

var rolesByName = func() map[string]HumanRole {
	m := make(map[string]HumanRole, roleCount)
	for i := range roleTable {
		m[roleTable[i].Name] = HumanRole(i)
	}
	return m
}()

// Roles returns every canonical role (RoleNone excluded) in table order.
func Roles() []HumanRole {
	out := make([]HumanRole, 0, roleCount-1)
	for r := RoleHips; r < roleCount; r++ {
		out = append(out, r)
	}
	return out
}

// ParseRole resolves a canonical role name.
func ParseRole(name string) (HumanRole, error) {
	r, ok := rolesByName[name]
	if !ok {
		return RoleNone, fmt.Errorf("unknown humanoid role %q", name)
	}
	return r, nil
}

// Valid reports whether r is inside the table.
func (r HumanRole) Valid() bool { return r < roleCount }

// Info returns the static metadata of the role.
func (r HumanRole) Info() RoleInfo {
	if !r.Valid() {
		return RoleInfo{Name: fmt.Sprintf("HumanRole(%d)", r)}
	}
	return roleTable[r]
}

func (r HumanRole) String() string { return r.Info().Name }

// IsHand reports whether r is the canonical left or right hand.
func (r HumanRole) IsHand() bool { return r.Valid() && roleTable[r].Hand }

// MarshalText encodes the role by its canonical name.
func (r HumanRole) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid humanoid role %d", r)
	}
	return []byte(roleTable[r].Name), nil
}

// UnmarshalText decodes a canonical role name.
func (r *HumanRole) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
