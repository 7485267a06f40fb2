package httpclient

import (
	"fmt"
	"net/http"
	"sort"
)

// Param describes one command parameter.
type Param struct {
	Name     string
	Required bool
}

// Command describes one device API function.
type Command struct {
	Name   string
	Method string
	Path   string
	Params []Param

	// UploadField is the multipart field name for PUT uploads
	UploadField string

	// Stream marks commands whose body is consumed incrementally
	Stream bool
}

func required(name string) Param { return Param{Name: name, Required: true} }
func optional(name string) Param { return Param{Name: name} }

// Commands is the device API.
var Commands = []Command{
	{Name: "system.info", Method: http.MethodGet, Path: "/api/system/info"},
	{Name: "system.status", Method: http.MethodGet, Path: "/api/system/status"},
	{Name: "system.restart", Method: http.MethodGet, Path: "/api/system/restart"},

	{Name: "firmware.upload", Method: http.MethodPut, Path: "/api/firmware", UploadField: "blob-fw"},
	{Name: "firmware.apply", Method: http.MethodGet, Path: "/api/firmware/apply"},

	{Name: "config.get", Method: http.MethodGet, Path: "/api/config"},
	{Name: "config.upload", Method: http.MethodPut, Path: "/api/config", UploadField: "blob-cfg"},
	{Name: "config.factoryreset", Method: http.MethodGet, Path: "/api/config/factoryreset"},

	{Name: "switch.caps", Method: http.MethodGet, Path: "/api/switch/caps", Params: []Param{optional("switch")}},
	{Name: "switch.status", Method: http.MethodPost, Path: "/api/switch/status", Params: []Param{optional("switch")}},
	{Name: "switch.ctrl", Method: http.MethodPost, Path: "/api/switch/ctrl",
		Params: []Param{required("switch"), required("action"), optional("response")}},

	{Name: "io.caps", Method: http.MethodPost, Path: "/api/io/caps", Params: []Param{optional("port")}},
	{Name: "io.status", Method: http.MethodPost, Path: "/api/io/status", Params: []Param{optional("port")}},
	{Name: "io.ctrl", Method: http.MethodPost, Path: "/api/io/ctrl",
		Params: []Param{required("port"), required("action"), optional("response")}},

	{Name: "phone.status", Method: http.MethodPost, Path: "/api/phone/status", Params: []Param{optional("account")}},

	{Name: "call.status", Method: http.MethodPost, Path: "/api/call/status", Params: []Param{optional("session")}},
	{Name: "call.dial", Method: http.MethodPost, Path: "/api/call/dial", Params: []Param{required("number")}},
	{Name: "call.answer", Method: http.MethodPost, Path: "/api/call/answer", Params: []Param{required("session")}},
	{Name: "call.hangup", Method: http.MethodPost, Path: "/api/call/hangup",
		Params: []Param{required("session"), optional("reason")}},

	{Name: "camera.caps", Method: http.MethodPost, Path: "/api/camera/caps"},
	{Name: "camera.snapshot", Method: http.MethodPost, Path: "/api/camera/snapshot",
		Params: []Param{required("width"), required("height"), optional("source"), optional("fps")}},

	{Name: "display.caps", Method: http.MethodPost, Path: "/api/display/caps"},
	{Name: "display.image.upload", Method: http.MethodPut, Path: "/api/display/image", UploadField: "blob-image",
		Params: []Param{required("display")}},
	{Name: "display.image.delete", Method: http.MethodDelete, Path: "/api/display/image",
		Params: []Param{required("display")}},

	{Name: "log.caps", Method: http.MethodPost, Path: "/api/log/caps"},
	{Name: "log.subscribe", Method: http.MethodPost, Path: "/api/log/subscribe",
		Params: []Param{optional("include"), optional("filter"), optional("duration")}},
	{Name: "log.unsubscribe", Method: http.MethodPost, Path: "/api/log/unsubscribe", Params: []Param{required("id")}},
	{Name: "log.pull", Method: http.MethodPost, Path: "/api/log/pull", Params: []Param{required("id"), optional("timeout")}},

	{Name: "audio.test", Method: http.MethodPost, Path: "/api/audio/test"},
	{Name: "email.send", Method: http.MethodPost, Path: "/api/email/send",
		Params: []Param{required("to"), required("subject"), optional("body"),
			optional("pictureCount"), optional("width"), optional("height")}},

	{Name: "pcap", Method: http.MethodGet, Path: "/api/pcap", Stream: true},
	{Name: "pcap.restart", Method: http.MethodPost, Path: "/api/pcap/restart"},
	{Name: "pcap.stop", Method: http.MethodPost, Path: "/api/pcap/stop"},
}

var commandIndex = func() map[string]Command {
	index := make(map[string]Command, len(Commands))
	for _, cmd := range Commands {
		index[cmd.Name] = cmd
	}
	return index
}()

// Lookup returns the command registered under name.
func Lookup(name string) (Command, error) {
	cmd, ok := commandIndex[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd, nil
}

// Names returns every command name, sorted.
func Names() []string {
	names := make([]string, 0, len(Commands))
	for _, cmd := range Commands {
		names = append(names, cmd.Name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every required parameter is present and non-nil.
func (c Command) Validate(args Args) error {
	for _, p := range c.Params {
		if !p.Required {
			continue
		}
		if v, ok := args[p.Name]; !ok || v == nil {
			return fmt.Errorf("%w: %s requires %q", ErrMissingParameter, c.Name, p.Name)
		}
	}
	return nil
}
