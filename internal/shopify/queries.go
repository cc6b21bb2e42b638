package shopify

// CollectionsQuery pages through every collection, ordered by title
const CollectionsQuery = `
query listCollections($first: Int!, $after: String) {
  collections(first: $first, after: $after, sortKey: TITLE) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        title
        handle
      }
    }
  }
}
`

// ProductsPageQuery fetches one page of products with the grade metafield, image,
// variant options and first collection
const ProductsPageQuery = `
query listProducts($first: Int!, $after: String, $gradeNamespace: String!, $gradeKey: String!) {
  products(first: $first, after: $after, sortKey: TITLE) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        handle
        title
        featuredImage {
          url
        }
        grade: metafield(namespace: $gradeNamespace, key: $gradeKey) {
          value
        }
        variants(first: 100) {
          pageInfo {
            hasNextPage
            endCursor
          }
          edges {
            node {
              selectedOptions {
                name
                value
              }
            }
          }
        }
        collections(first: 1) {
          edges {
            node {
              id
              title
              handle
            }
          }
        }
      }
    }
  }
}
`

// ProductByHandleQuery fetches a single product with its variants and first page of collections
const ProductByHandleQuery = `
query productByHandle($handle: String!) {
  productByIdentifier(identifier: {handle: $handle}) {
    id
    handle
    title
    featuredImage {
      url
    }
    variants(first: 250) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          selectedOptions {
            name
            value
          }
        }
      }
    }
    collections(first: 250) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          id
          title
          handle
        }
      }
    }
  }
}
`

// ProductCollectionsQuery continues a product's collection memberships past the first page
const ProductCollectionsQuery = `
query productCollections($id: ID!, $first: Int!, $after: String) {
  product(id: $id) {
    collections(first: $first, after: $after) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          id
          title
          handle
        }
      }
    }
  }
}
`

// ProductVariantsQuery continues a product's variants past the first page
const ProductVariantsQuery = `
query productVariants($id: ID!, $first: Int!, $after: String) {
  product(id: $id) {
    variants(first: $first, after: $after) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          selectedOptions {
            name
            value
          }
        }
      }
    }
  }
}
`

// CollectionHandlesManualQuery lists a collection's product handles in merchandised (manual) order
const CollectionHandlesManualQuery = `
query collectionHandlesManual($handle: String!, $first: Int!, $after: String) {
  collectionByHandle(handle: $handle) {
    products(first: $first, after: $after, sortKey: MANUAL) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          handle
        }
      }
    }
  }
}
`

// CollectionHandlesDefaultQuery lists a collection's product handles without a sort key
const CollectionHandlesDefaultQuery = `
query collectionHandlesDefault($handle: String!, $first: Int!, $after: String) {
  collectionByHandle(handle: $handle) {
    products(first: $first, after: $after) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          handle
        }
      }
    }
  }
}
`
