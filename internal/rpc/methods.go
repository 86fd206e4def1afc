package rpc

import (
	"github.com/emrgen/programtree/internal/command"
)

const ServiceName = "programtree.v1.ProgramTreeService"

// Method is one rpc of the service. Its name is the name of the command it carries.
type Method struct {
	Name string
	// Write is true for the methods modifying a tree.
	Write bool
	New   func() command.Command
}

func method[C any, P interface {
	*C
	command.Command
}](write bool) Method {
	return Method{
		Name:  P(new(C)).CommandName(),
		Write: write,
		New:   func() command.Command { return P(new(C)) },
	}
}

// Methods lists the rpcs in the order they are served.
var Methods = []Method{
	method[command.GetProgramTree](false),
	method[command.GetContent](false),
	method[command.GetLinksUsingNode](false),
	method[command.PasteElement](true),
	method[command.DetachElement](true),
	method[command.UpdateLink](true),
	method[command.BulkUpdateLinks](true),
	method[command.OrderUpLink](true),
	method[command.OrderDownLink](true),
	method[command.SetPrerequisite](true),
	method[command.FillFromLastYear](true),
	method[command.DeleteProgramTree](true),
}

// Lookup returns the method with the given name.
func Lookup(name string) (Method, bool) {
	for _, m := range Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// FullMethod returns the grpc path of the method, e.g. /programtree.v1.ProgramTreeService/PasteElement.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}
