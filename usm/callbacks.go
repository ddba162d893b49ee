package usm

type AllocateCallback func(
	resolver *Resolver,
	handle *Handle,
	userData interface{},
)

type FreeCallback func(
	resolver *Resolver,
	handle *Handle,
	userData interface{},
)

// CallbackOptions are invoked after every successful allocation and after every release. They run
// on the goroutine that called the Resolver.
type CallbackOptions struct {
	Allocate AllocateCallback
	Free     FreeCallback
	UserData interface{}
}

type resolverCallbacks struct {
	Callbacks *CallbackOptions
	Resolver  *Resolver
}

func (c *resolverCallbacks) Allocate(handle *Handle) {
	if c.Callbacks != nil && c.Callbacks.Allocate != nil {
		c.Callbacks.Allocate(c.Resolver, handle, c.Callbacks.UserData)
	}
}

func (c *resolverCallbacks) Free(handle *Handle) {
	if c.Callbacks != nil && c.Callbacks.Free != nil {
		c.Callbacks.Free(c.Resolver, handle, c.Callbacks.UserData)
	}
}
