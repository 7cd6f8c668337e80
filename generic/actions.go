package generic

import (
	"encoding/json"

	"asyncrest/rest"
)

func (g *GenericView[T]) list(c *rest.Context) (*rest.Response, error) {
	items, err := g.Store.List(c.RequestContext())
	if err != nil {
		return nil, err
	}

	w, err := g.paginate(c, len(items))
	if err != nil {
		return nil, err
	}

	page := items
	if !w.Disabled {
		if w.Offset >= len(items) {
			page = nil
		} else {
			end := w.Offset + w.Limit
			if end > len(items) {
				end = len(items)
			}
			page = items[w.Offset:end]
		}
	}

	data, err := g.Serializer.RepresentMany(c.RequestContext(), page)
	if err != nil {
		return nil, err
	}

	if w.Disabled {
		return rest.OK(data), nil
	}
	return rest.OK(g.Paginator.Envelope(c, data, len(items), w)), nil
}

func (g *GenericView[T]) create(c *rest.Context) (*rest.Response, error) {
	obj, err := g.Serializer.LoadRequest(c)
	if err != nil {
		return nil, err
	}

	created, err := g.Store.Create(c.RequestContext(), obj)
	if err != nil {
		return nil, err
	}

	data, err := g.Serializer.Bind(created).Data(c.RequestContext())
	if err != nil {
		return nil, err
	}

	resp := rest.Created(data)
	if g.PK != nil {
		resp.WithHeader("Location", c.Request().URL.Path+"/"+g.PK(created))
	}
	return resp, nil
}

func (g *GenericView[T]) retrieve(c *rest.Context) (*rest.Response, error) {
	obj, err := g.GetObject(c)
	if err != nil {
		return nil, err
	}

	data, err := g.Serializer.Bind(obj).Data(c.RequestContext())
	if err != nil {
		return nil, err
	}
	return rest.OK(data), nil
}

func (g *GenericView[T]) update(c *rest.Context) (*rest.Response, error) {
	return g.doUpdate(c, false)
}

func (g *GenericView[T]) partialUpdate(c *rest.Context) (*rest.Response, error) {
	return g.doUpdate(c, true)
}

func (g *GenericView[T]) doUpdate(c *rest.Context, partial bool) (*rest.Response, error) {
	existing, err := g.GetObject(c)
	if err != nil {
		return nil, err
	}

	var input []byte
	if partial {
		// Overlay the body onto the existing object so omitted fields keep
		// their values, then run the merged value through validation.
		body, err := c.Body()
		if err != nil {
			return nil, err
		}
		merged := existing
		if err := json.Unmarshal(body, &merged); err != nil {
			return nil, rest.ValidationError(map[string]string{
				"non_field_errors": "request body is not valid JSON",
			})
		}
		input, err = json.Marshal(merged)
		if err != nil {
			return nil, err
		}
	} else {
		input, err = c.Body()
		if err != nil {
			return nil, err
		}
	}

	obj, err := g.Serializer.Load(c.RequestContext(), input)
	if err != nil {
		return nil, err
	}

	updated, err := g.Store.Update(c.RequestContext(), c.Param(g.lookupParam()), obj)
	if err != nil {
		return nil, err
	}

	data, err := g.Serializer.Bind(updated).Data(c.RequestContext())
	if err != nil {
		return nil, err
	}
	return rest.OK(data), nil
}

func (g *GenericView[T]) destroy(c *rest.Context) (*rest.Response, error) {
	// GetObject first so 404 and object permissions apply before the delete.
	if _, err := g.GetObject(c); err != nil {
		return nil, err
	}
	if err := g.Store.Delete(c.RequestContext(), c.Param(g.lookupParam())); err != nil {
		return nil, err
	}
	return rest.NoContent(), nil
}
