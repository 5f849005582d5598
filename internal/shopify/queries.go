package shopify

// MetaobjectsQuery fetches metaobject entries of one definition type,
// paginated by cursor
const MetaobjectsQuery = `
query getMetaobjects($type: String!, $first: Int!, $after: String) {
  metaobjects(type: $type, first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        handle
        displayName
        fields {
          key
          value
        }
      }
    }
  }
}
`
