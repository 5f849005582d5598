package shopify

// MetaobjectCreateMutation creates one metaobject entry
const MetaobjectCreateMutation = `
mutation metaobjectCreate($metaobject: MetaobjectCreateInput!) {
  metaobjectCreate(metaobject: $metaobject) {
    metaobject {
      id
      handle
      displayName
    }
    userErrors {
      field
      message
    }
  }
}
`

// MetaobjectUpdateMutation updates one metaobject entry by GID
const MetaobjectUpdateMutation = `
mutation metaobjectUpdate($id: ID!, $metaobject: MetaobjectUpdateInput!) {
  metaobjectUpdate(id: $id, metaobject: $metaobject) {
    metaobject {
      id
      handle
      displayName
    }
    userErrors {
      field
      message
    }
  }
}
`

// MetaobjectUpsertMutation creates or updates a metaobject entry by handle
const MetaobjectUpsertMutation = `
mutation metaobjectUpsert($handle: MetaobjectHandleInput!, $metaobject: MetaobjectUpsertInput!) {
  metaobjectUpsert(handle: $handle, metaobject: $metaobject) {
    metaobject {
      id
      handle
      displayName
    }
    userErrors {
      field
      message
    }
  }
}
`

// MetafieldsSetMutation writes metafields onto an existing owner
const MetafieldsSetMutation = `
mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields {
      id
      namespace
      key
    }
    userErrors {
      field
      message
    }
  }
}
`

// MetaobjectFieldInput is one key/value field of a metaobject entry
type MetaobjectFieldInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MetaobjectCreateInput is the input for metaobjectCreate
type MetaobjectCreateInput struct {
	Type   string                 `json:"type"`
	Handle *string                `json:"handle,omitempty"`
	Fields []MetaobjectFieldInput `json:"fields,omitempty"`
}

// MetaobjectUpdateInput is the input for metaobjectUpdate
type MetaobjectUpdateInput struct {
	Fields []MetaobjectFieldInput `json:"fields,omitempty"`
}

// MetaobjectHandleInput addresses a metaobject by definition type and handle
type MetaobjectHandleInput struct {
	Type   string `json:"type"`
	Handle string `json:"handle"`
}

// MetaobjectUpsertInput is the input for metaobjectUpsert
type MetaobjectUpsertInput struct {
	Handle *string                `json:"handle,omitempty"`
	Fields []MetaobjectFieldInput `json:"fields,omitempty"`
}

// MetafieldsSetInput is one entry for metafieldsSet
type MetafieldsSetInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}
