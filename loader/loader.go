// Package loader populates vm.MemoryRegion buffers from a plugin image
// on disk: a raw Thumb binary blob plus its plugin_api header, in the
// packed layout original_source/src/plugin_api.h defines. It replaces
// the teacher's assembler-output loader (symbol table, directive
// processing, literal pools) with a single binary-blob read, since
// SPEC_FULL.md plugins ship as compiled images, not assembly source.
package loader

import (
	"fmt"
	"os"

	"github.com/pluginhost/thumbvm/host"
	"github.com/pluginhost/thumbvm/vm"
)

// Plugin is a loaded plugin image ready to be wired onto a vm.State:
// the raw program bytes (header included, at its configured offset)
// and the decoded header describing where the plugin expects its data
// memory and how much of it it needs.
type Plugin struct {
	Image  []byte
	Header host.PluginHeader
}

// Load reads a plugin image file from path. The file is the flat
// binary produced by linking a plugin against the PLUGIN_FUNCTION/
// PLUGIN_HEADER section layout: code starting at offset 0, with the
// plugin_api header at headerOffset (the offset of PLUGIN_API_ADDRESS
// within the image, i.e. PLUGIN_API_ADDRESS - ProgramAddress).
func Load(path string, headerOffset int) (*Plugin, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-supplied plugin path
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read plugin image: %w", err)
	}
	return LoadBytes(data, headerOffset)
}

// LoadBytes decodes an in-memory plugin image the same way Load does,
// for callers that already have the image (e.g. embedded via go:embed
// or received over the network).
func LoadBytes(data []byte, headerOffset int) (*Plugin, error) {
	if headerOffset < 0 || headerOffset+20 > len(data) {
		return nil, fmt.Errorf("loader: header offset 0x%X out of range for a %d-byte image", headerOffset, len(data))
	}
	hdr, err := host.DecodePluginHeader(data[headerOffset:])
	if err != nil {
		return nil, fmt.Errorf("loader: invalid plugin header: %w", err)
	}
	return &Plugin{Image: data, Header: hdr}, nil
}

// DataRegion builds the zeroed data-memory region this plugin
// requires, honoring RequiredMemory from its header, clamped to at
// least the requested size from the caller's configuration.
func (p *Plugin) DataRegion(configuredSize uint32) vm.MemoryRegion {
	size := p.Header.RequiredMemory
	if configuredSize > size {
		size = configuredSize
	}
	return vm.MemoryRegion{
		Base:   p.Header.DataAddress,
		Length: size,
		Data:   make([]byte, size),
	}
}

// ProgramRegion returns the program-region descriptor for this
// plugin. Program regions carry no local storage: reads are served
// through the host's ReadProgramMemory callback, which Wire sets up
// to read out of p.Image.
func (p *Plugin) ProgramRegion(size uint32) vm.MemoryRegion {
	return vm.MemoryRegion{Base: p.Header.ProgramAddress, Length: size}
}

// Wire configures s with this plugin's program and data regions, plus
// the service region served by api, and installs a ReadProgramMemory
// callback that serves fetches directly out of p.Image. programSize
// sets the program-region footprint (e.g. from config.Config);
// dataSize sets a floor under the header's RequiredMemory.
func Wire(s *vm.State, p *Plugin, api *host.ServiceAPI, serviceBase, serviceSize, programSize, dataSize uint32) {
	s.Configure(
		p.ProgramRegion(programSize),
		p.DataRegion(dataSize),
		vm.MemoryRegion{Base: serviceBase, Length: serviceSize, Data: api.Encode()},
	)
	programBase := p.Header.ProgramAddress
	s.ReadProgramMemory = func(buf []byte, addr uint32) error {
		off := addr - programBase
		if int(off)+len(buf) > len(p.Image) {
			return fmt.Errorf("loader: read past end of plugin image at 0x%X", addr)
		}
		copy(buf, p.Image[off:int(off)+len(buf)])
		return nil
	}
	s.FunctionCall = func(st *vm.State, target uint32) bool {
		handled, err := api.Dispatch(st, target)
		if err != nil {
			st.LastError = err
			return false
		}
		return handled
	}
}
