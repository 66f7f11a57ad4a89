package editorbridge

// Events emitted to the editor.
const (
	EventBoxStart     = "box:start"
	EventBoxFinish    = "box:finish"
	EventBoxRefresh   = "box:refresh"
	EventStructure    = "program:structure"
	EventWireFlash    = "wire:flash"
	EventCommandError = "error"
)

// Commands received from the editor.
const (
	CmdAddBox         = "box:add"
	CmdDeleteBox      = "box:delete"
	CmdMoveBox        = "box:move"
	CmdBoxEvent       = "box:event"
	CmdSetPlug        = "plug:set"
	CmdAddWire        = "wire:add"
	CmdDeleteWire     = "wire:delete"
	CmdResolvePromise = "promise:resolve"
	CmdRejectPromise  = "promise:reject"
	CmdTerminate      = "program:terminate"
	CmdSetView        = "view:set"
)

type addBoxRequest struct {
	Type string  `json:"type"`
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type boxRequest struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type boxEventRequest struct {
	Box     string `json:"box"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type setPlugRequest struct {
	Box   string `json:"box"`
	Plug  string `json:"plug"`
	Value any    `json:"value"`
}

type wireRequest struct {
	ID       string `json:"id"`
	SrcBox   string `json:"src_box"`
	SrcPlug  string `json:"src_plug"`
	DestBox  string `json:"dest_box"`
	DestPlug string `json:"dest_plug"`
}

type promiseRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Error string `json:"error"`
}

type viewRequest struct {
	View any `json:"view"`
}

type boxPayload struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type wirePayload struct {
	ID       string `json:"id"`
	SrcBox   string `json:"src_box"`
	SrcPlug  string `json:"src_plug"`
	DestBox  string `json:"dest_box"`
	DestPlug string `json:"dest_plug"`
}

type structurePayload struct {
	Boxes []boxPayload  `json:"boxes"`
	Wires []wirePayload `json:"wires"`
}
