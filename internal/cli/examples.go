package cli

// Sample sources used by --example.
const (
	exampleClasses = `
class MyClass:
    '''A simple class.'''
    pass

class AnotherClass(MyClass):
    '''Inherits from MyClass.'''
    def method1(self):
        pass

@dataclass
class DataClass:
    '''A dataclass.'''
    name: str
    value: int
`

	exampleFunctions = `
def simple_function():
    '''A simple function.'''
    pass

def function_with_params(a, b, c=10):
    '''Function with parameters.'''
    return a + b + c

@decorator
async def async_function(*args, **kwargs):
    '''An async function with decorators.'''
    pass

class MyClass:
    def method(self):
        '''This should not be listed as a function.'''
        pass
`

	exampleMethods = `
class MyClass:
    '''A class with various methods.'''

    def __init__(self, value):
        self.value = value

    def instance_method(self, x):
        '''An instance method.'''
        return self.value + x

    @classmethod
    def class_method(cls, x):
        '''A class method.'''
        return cls(x)

    @staticmethod
    def static_method(x, y):
        '''A static method.'''
        return x + y

    @property
    def my_property(self):
        '''A property.'''
        return self.value

    async def async_method(self):
        '''An async method.'''
        pass

class AnotherClass:
    def other_method(self):
        '''This should not be listed.'''
        pass
`

	// exampleMethodsClass is the class queried by methods --example.
	exampleMethodsClass = "MyClass"

	exampleModule = `
import abc


class Repository(abc.ABC):
    class Config:
        table = "items"

        def describe(self):
            return self.table

    @abc.abstractmethod
    def get(self, key):
        ...

    @classmethod
    def create(cls, *args, **kwargs):
        return cls()


@functools.lru_cache(maxsize=None)
def load(path, *, strict=False):
    def parse(line):
        return line.strip()
    return [parse(l) for l in open(path)]


async def main():
    pass
`
)
