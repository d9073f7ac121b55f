package feather

import "strconv"

// ReturnCode is the completion code of a script or command evaluation,
// drawn from the fixed set the core must distinguish (spec §7).
type ReturnCode int

const (
	CodeOK ReturnCode = iota
	CodeError
	CodeReturn
	CodeBreak
	CodeContinue
)

func (c ReturnCode) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeError:
		return "error"
	case CodeReturn:
		return "return"
	case CodeBreak:
		return "break"
	case CodeContinue:
		return "continue"
	default:
		return "code" + strconv.Itoa(int(c))
	}
}

// ReturnCodeType is the internal representation caching a value known to be
// one of the fixed return codes. No command in this package creates one.
type ReturnCodeType ReturnCode

func (t ReturnCodeType) Name() string         { return "return-code" }
func (t ReturnCodeType) Dup() ObjType         { return t }
func (t ReturnCodeType) UpdateString() string { return strconv.Itoa(int(t)) }

func (t ReturnCodeType) IntoInt() (int64, bool) { return int64(t), true }
