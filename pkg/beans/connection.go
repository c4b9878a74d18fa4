package beans

// Connection holds the information a connector needs to reach an asset.
type Connection struct {
	ElementHeader
	QualifiedName           string                 `json:"qualifiedName"`
	DisplayName             string                 `json:"displayName,omitempty"`
	Description             string                 `json:"description,omitempty"`
	ConnectorProviderName   string                 `json:"connectorProviderClassName,omitempty"`
	Endpoint                *Endpoint              `json:"endpoint,omitempty"`
	UserID                  string                 `json:"userId,omitempty"`
	ClearPassword           string                 `json:"clearPassword,omitempty"`
	EncryptedPassword       string                 `json:"encryptedPassword,omitempty"`
	SecuredProperties       map[string]string      `json:"securedProperties,omitempty"`
	ConfigurationProperties map[string]interface{} `json:"configurationProperties,omitempty"`
}

// Clone returns a deep copy of the connection, secrets included.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	out := *c
	out.ElementHeader = c.ElementHeader.Header()
	out.Endpoint = c.Endpoint.Clone()
	out.SecuredProperties = cloneStringMap(c.SecuredProperties)
	out.ConfigurationProperties = cloneAnyMap(c.ConfigurationProperties)
	return &out
}

// Redacted returns a deep copy with passwords and secured properties removed.
func (c *Connection) Redacted() *Connection {
	out := c.Clone()
	if out == nil {
		return nil
	}
	out.ClearPassword = ""
	out.EncryptedPassword = ""
	out.SecuredProperties = nil
	return out
}

// Endpoint is the network address of an asset's host or service.
type Endpoint struct {
	ElementHeader
	QualifiedName    string `json:"qualifiedName"`
	DisplayName      string `json:"displayName,omitempty"`
	Description      string `json:"description,omitempty"`
	Address          string `json:"address"`
	Protocol         string `json:"protocol,omitempty"`
	EncryptionMethod string `json:"encryptionMethod,omitempty"`
}

// Clone returns a deep copy of the endpoint.
func (e *Endpoint) Clone() *Endpoint {
	if e == nil {
		return nil
	}
	c := *e
	c.ElementHeader = e.ElementHeader.Header()
	return &c
}
